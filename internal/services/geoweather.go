// Package services wraps the external geolocation and weather APIs behind
// small HTTP clients with bounded timeouts.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type GeoWeatherClient struct {
	weatherKey     string
	geoBaseURL     string
	weatherBaseURL string
	client         *http.Client
}

type geoResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	City    string `json:"city"`
}

type weatherResponse struct {
	Current struct {
		TempC float64 `json:"temp_c"`
	} `json:"current"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewGeoWeatherClient(weatherKey string) *GeoWeatherClient {
	return &GeoWeatherClient{
		weatherKey:     weatherKey,
		geoBaseURL:     "http://ip-api.com/json",
		weatherBaseURL: "https://api.weatherapi.com/v1",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CityForIP resolves an IP address to a city name via ip-api.com.
func (c *GeoWeatherClient) CityForIP(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geoBaseURL+"/"+url.PathEscape(ip), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo lookup: %w", err)
	}
	defer resp.Body.Close()

	var geo geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return "", fmt.Errorf("decode geo response: %w", err)
	}
	if geo.Status == "fail" {
		return "", fmt.Errorf("geo lookup failed: %s", geo.Message)
	}
	if geo.City == "" {
		return "", fmt.Errorf("geo lookup returned no city for %s", ip)
	}

	return geo.City, nil
}

// TemperatureIn fetches the current temperature in Celsius for a city via
// weatherapi.com.
func (c *GeoWeatherClient) TemperatureIn(ctx context.Context, city string) (float64, error) {
	endpoint := fmt.Sprintf("%s/current.json?q=%s&key=%s",
		c.weatherBaseURL, url.QueryEscape(city), url.QueryEscape(c.weatherKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("weather lookup: %w", err)
	}
	defer resp.Body.Close()

	var weather weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&weather); err != nil {
		return 0, fmt.Errorf("decode weather response: %w", err)
	}
	if weather.Error != nil {
		return 0, fmt.Errorf("weather lookup failed: %s", weather.Error.Message)
	}

	return weather.Current.TempC, nil
}
