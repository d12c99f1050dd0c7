package httpapi

import (
	"net/http"
	"time"

	"github.com/hdtodd/WeatherStation/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(noStore(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
