package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/hdtodd/WeatherStation/internal/db"
	"github.com/hdtodd/WeatherStation/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	opener db.Opener
	table  string
}

func NewHealthchecker(opener db.Opener, table string) healthchecker {
	return &healthcheckerImpl{opener: opener, table: table}
}

// handleHealthz reports ok only when the store opens and carries the columns
// the report reads.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	conn, err := h.opener.Open(r.Context())
	if err != nil {
		slog.Error("healthz: store unavailable", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Warn("healthz: store close failed", "error", closeErr)
		}
	}()

	if err := db.VerifySchema(r.Context(), conn, h.table); err != nil {
		slog.Error("healthz: schema check failed", "table", h.table, "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, opener db.Opener, table string) {
	healthchecker := NewHealthchecker(opener, table)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
