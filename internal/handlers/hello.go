package handlers

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Loopback callers get a stable public address so local development still
// resolves to a real city.
const loopbackFallbackIP = "24.48.0.1"

type helloResponse struct {
	ClientIP string `json:"client_ip"`
	Greeting string `json:"greeting"`
	Location string `json:"location"`
}

type helloError struct {
	Error  string `json:"error"`
	Status bool   `json:"status"`
}

// Hello greets the visitor with the current temperature at their location.
// @Summary Greet a visitor
// @Tags hello
// @Produce json
// @Param visitor_name query string true "Visitor name"
// @Success 200 {object} helloResponse
// @Failure 400 {object} helloError
// @Router /api/hello [get]
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	visitorName := r.URL.Query().Get("visitor_name")
	if visitorName == "" {
		writeJSON(w, http.StatusBadRequest, helloError{Error: "visitor_name is required", Status: false})
		return
	}

	ip := clientIP(r)
	lookupIP := ip
	if isLoopback(lookupIP) {
		lookupIP = loopbackFallbackIP
	}

	city, err := h.geo.CityForIP(r.Context(), lookupIP)
	if err != nil {
		h.log.Warn("geo lookup failed", zap.String("ip", lookupIP), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, helloError{Error: "could not resolve location", Status: false})
		return
	}

	temp, err := h.geo.TemperatureIn(r.Context(), city)
	if err != nil {
		h.log.Warn("weather lookup failed", zap.String("city", city), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, helloError{Error: "could not fetch weather", Status: false})
		return
	}

	location := city
	if isLoopback(ip) {
		location = "localhost"
	}

	writeJSON(w, http.StatusOK, helloResponse{
		ClientIP: ip,
		Greeting: fmt.Sprintf("Hello, %s!, the temperature is %g degrees Celsius in %s", visitorName, temp, city),
		Location: location,
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}
