// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package weather talks to the Open-Meteo APIs: geocoding to resolve a
// city name into coordinates (cached in the cities table), and forecast
// for hourly and daily weather data.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// ErrCityNotFound means the geocoding API has no match for the name.
var ErrCityNotFound = errors.New("weather: city not found")

// Client queries the Open-Meteo geocoding and forecast endpoints.
type Client struct {
	geocodingURL string
	forecastURL  string
	cities       *store.CityStore
	http         *http.Client
}

// NewClient creates a weather client. The cities store acts as a local
// cache so repeated lookups of the same name skip the geocoding API.
func NewClient(geocodingURL, forecastURL string, cities *store.CityStore) *Client {
	return &Client{
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		cities:       cities,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve turns a city name into coordinates. The local cities table is
// consulted first; on a miss the geocoding API is queried and the result
// cached. A cache write failure is logged but does not fail the lookup.
func (c *Client) Resolve(ctx context.Context, name string) (*models.City, error) {
	city, err := c.cities.FindByName(name)
	if err != nil {
		slog.Error("city cache lookup failed", "city", name, "error", err)
	}
	if city != nil {
		return city, nil
	}

	geocoded, err := c.geocode(ctx, name)
	if err != nil {
		return nil, err
	}

	cached, err := c.cities.Create(name, geocoded.Latitude, geocoded.Longitude, geocoded.Timezone)
	if err != nil {
		// We can still serve the user the result they searched for.
		slog.Error("city cache insert failed", "city", name, "error", err)
		return geocoded, nil
	}
	return cached, nil
}

// geocode queries the Open-Meteo geocoding API for the best match.
func (c *Client) geocode(ctx context.Context, name string) (*models.City, error) {
	params := url.Values{
		"name":     {name},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodingURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("geocoding read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("geocoding API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result geocodingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("geocoding unmarshal: %w", err)
	}

	// An unknown name comes back as 200 with no results.
	if len(result.Results) == 0 {
		return nil, ErrCityNotFound
	}

	match := result.Results[0]
	return &models.City{
		Name:      name,
		Latitude:  match.Latitude,
		Longitude: match.Longitude,
		Timezone:  match.Timezone,
	}, nil
}

// Forecast fetches the hourly and daily forecasts for a city. Both
// upstream calls must succeed; a failure in either fails the whole
// forecast.
func (c *Client) Forecast(ctx context.Context, city *models.City) (*Forecast, error) {
	hourly, err := c.fetchHourly(ctx, city)
	if err != nil {
		return nil, err
	}

	daily, err := c.fetchDaily(ctx, city)
	if err != nil {
		return nil, err
	}

	return &Forecast{City: city, Hourly: hourly, Daily: daily}, nil
}

func (c *Client) fetchHourly(ctx context.Context, city *models.City) ([]HourlyForecast, error) {
	params := url.Values{
		"latitude":       {formatCoord(city.Latitude)},
		"longitude":      {formatCoord(city.Longitude)},
		"timezone":       {city.Timezone},
		"forecast_hours": {"20"},
		"hourly":         {"temperature_2m,relative_humidity_2m,surface_pressure,cloud_cover,wind_speed_10m,precipitation_probability,weather_code"},
	}

	var payload struct {
		Hourly struct {
			Time                     []string  `json:"time"`
			Temperature              []float64 `json:"temperature_2m"`
			RelativeHumidity         []float64 `json:"relative_humidity_2m"`
			SurfacePressure          []float64 `json:"surface_pressure"`
			CloudCover               []int     `json:"cloud_cover"`
			WindSpeed                []float64 `json:"wind_speed_10m"`
			PrecipitationProbability []int     `json:"precipitation_probability"`
			WeatherCode              []int     `json:"weather_code"`
		} `json:"hourly"`
	}
	if err := c.fetchForecast(ctx, params, &payload); err != nil {
		return nil, err
	}

	h := payload.Hourly
	forecasts := make([]HourlyForecast, 0, len(h.Time))
	for i := range h.Time {
		if i >= len(h.Temperature) || i >= len(h.RelativeHumidity) || i >= len(h.SurfacePressure) ||
			i >= len(h.CloudCover) || i >= len(h.WindSpeed) || i >= len(h.PrecipitationProbability) ||
			i >= len(h.WeatherCode) {
			return nil, fmt.Errorf("forecast API returned ragged hourly arrays")
		}
		forecasts = append(forecasts, HourlyForecast{
			Time:                     h.Time[i],
			Temperature:              h.Temperature[i],
			RelativeHumidity:         h.RelativeHumidity[i],
			SurfacePressure:          h.SurfacePressure[i],
			CloudCover:               h.CloudCover[i],
			WindSpeed:                h.WindSpeed[i],
			PrecipitationProbability: h.PrecipitationProbability[i],
			WeatherCode:              h.WeatherCode[i],
		})
	}
	return forecasts, nil
}

func (c *Client) fetchDaily(ctx context.Context, city *models.City) ([]DailyForecast, error) {
	params := url.Values{
		"latitude":      {formatCoord(city.Latitude)},
		"longitude":     {formatCoord(city.Longitude)},
		"timezone":      {city.Timezone},
		"forecast_days": {"7"},
		"daily":         {"temperature_2m_max,temperature_2m_min,precipitation_probability_mean,weather_code,sunrise,sunset"},
	}

	var payload struct {
		Daily struct {
			Time                     []string  `json:"time"`
			TemperatureMax           []float64 `json:"temperature_2m_max"`
			TemperatureMin           []float64 `json:"temperature_2m_min"`
			PrecipitationProbability []int     `json:"precipitation_probability_mean"`
			WeatherCode              []int     `json:"weather_code"`
			Sunrise                  []string  `json:"sunrise"`
			Sunset                   []string  `json:"sunset"`
		} `json:"daily"`
	}
	if err := c.fetchForecast(ctx, params, &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	forecasts := make([]DailyForecast, 0, len(d.Time))
	for i := range d.Time {
		if i >= len(d.TemperatureMax) || i >= len(d.TemperatureMin) ||
			i >= len(d.PrecipitationProbability) || i >= len(d.WeatherCode) ||
			i >= len(d.Sunrise) || i >= len(d.Sunset) {
			return nil, fmt.Errorf("forecast API returned ragged daily arrays")
		}
		forecasts = append(forecasts, DailyForecast{
			Time:                     d.Time[i],
			TemperatureMax:           d.TemperatureMax[i],
			TemperatureMin:           d.TemperatureMin[i],
			PrecipitationProbability: d.PrecipitationProbability[i],
			WeatherCode:              d.WeatherCode[i],
			Sunrise:                  d.Sunrise[i],
			Sunset:                   d.Sunset[i],
		})
	}
	return forecasts, nil
}

// fetchForecast issues one forecast API call and decodes into out.
func (c *Client) fetchForecast(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.forecastURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("forecast request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("forecast http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("forecast read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		return fmt.Errorf("forecast API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("forecast unmarshal: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- Open-Meteo geocoding API types ---

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}
