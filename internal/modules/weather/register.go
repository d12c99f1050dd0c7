package weather

import (
	"log/slog"
	"net/http"

	"github.com/hdtodd/WeatherStation/internal/config"
	"github.com/hdtodd/WeatherStation/internal/db"
	"github.com/hdtodd/WeatherStation/internal/modules/weather/controller"
	"github.com/hdtodd/WeatherStation/internal/modules/weather/service"
)

func RegisterFeature(mux *http.ServeMux, cfg config.Config, opener db.Opener, logger *slog.Logger) {
	reportService := service.NewService(opener, cfg.StoreTable, cfg.Extended(), logger)
	weatherController := controller.NewWeatherController(reportService, cfg)
	weatherController.RegisterRoutes(mux)
}
