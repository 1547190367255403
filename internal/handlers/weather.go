// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/weather"
)

// Weather serves the weather lookup page.
type Weather struct {
	renderer *render.Renderer
	weather  *weather.Client
}

func NewWeather(renderer *render.Renderer, client *weather.Client) *Weather {
	return &Weather{renderer: renderer, weather: client}
}

// WeatherPage renders the city search form.
func (h *Weather) WeatherPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, "weather", &render.PageData{Title: "Weather"})
}

// WeatherSubmit geocodes the submitted city and renders its hourly and
// daily forecasts.
func (h *Weather) WeatherSubmit(w http.ResponseWriter, r *http.Request) {
	city := r.FormValue("city")
	if city == "" {
		session.AddFlash(w, r, "danger", "Type in the name of a city.")
		http.Redirect(w, r, "/user/weather", http.StatusSeeOther)
		return
	}
	if msg := validateCity(city); msg != "" {
		session.AddFlash(w, r, "danger", msg)
		http.Redirect(w, r, "/user/weather", http.StatusSeeOther)
		return
	}

	resolved, err := h.weather.Resolve(r.Context(), city)
	if err != nil {
		if errors.Is(err, weather.ErrCityNotFound) {
			h.renderer.Error(w, r, http.StatusNotFound)
			return
		}
		slog.Error("city resolve failed", "city", city, "error", err)
		h.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	forecast, err := h.weather.Forecast(r.Context(), resolved)
	if err != nil {
		slog.Error("forecast fetch failed", "city", resolved.Name, "error", err)
		h.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "weather", &render.PageData{
		Title: "Weather",
		Data:  map[string]any{"Forecast": forecast},
	})
}
