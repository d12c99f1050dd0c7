package controller

import (
	"net/http"

	"github.com/hdtodd/WeatherStation/internal/config"
	"github.com/hdtodd/WeatherStation/internal/modules/weather/service"
)

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service service.ReportService
	config  config.Config
}

func NewWeatherController(service service.ReportService, config config.Config) WeatherController {
	return &weatherControllerImpl{service: service, config: config}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleReport)
	mux.HandleFunc("GET /api/v1/readings", c.handleReadings)
	mux.HandleFunc("GET /api/v1/readings/latest", c.handleLatest)
}
