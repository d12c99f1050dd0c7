package httpapi

import (
	"net/http"

	"github.com/hdtodd/WeatherStation/internal/config"
	"github.com/hdtodd/WeatherStation/internal/db"
)

func NewMux(cfg config.Config, opener db.Opener) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, opener, cfg.StoreTable)
	return mux
}
