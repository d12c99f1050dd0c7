package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hdtodd/WeatherStation/internal/db"
	"github.com/hdtodd/WeatherStation/internal/modules/weather/views"
	"github.com/hdtodd/WeatherStation/internal/utils"
)

func (c *weatherControllerImpl) handleReport(w http.ResponseWriter, r *http.Request) {
	history, err := parseHistoryQuery(r, c.config.HistoryWindow)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := c.service.BuildReport(r.Context(), history)
	if err != nil {
		writeServiceError(w, "report", err)
		return
	}

	data := &views.ReportData{
		SiteName:       c.config.SiteName,
		ChartLoaderURL: c.config.ChartLoaderURL,
		Extended:       c.config.Extended(),
		HistoryLabel:   views.HistoryLabel(history),
		Chart:          views.BuildChart(report.Window, report.Latest, c.config.PageVariant),
	}
	if data.Extended {
		data.Summary = views.BuildSummary(report.Latest)
	}

	var buf bytes.Buffer
	if err := views.RenderReport(&buf, data); err != nil {
		slog.Error("report template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *weatherControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	history, err := parseHistoryQuery(r, c.config.HistoryWindow)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := c.service.Window(r.Context(), history)
	if err != nil {
		writeServiceError(w, "readings", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"history": history.String(),
		"count":   len(readings),
		"items":   readings,
	})
}

func (c *weatherControllerImpl) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := c.service.Latest(r.Context())
	if err != nil {
		writeServiceError(w, "latest", err)
		return
	}
	if latest == nil {
		utils.WriteError(w, http.StatusNotFound, "no readings in store")
		return
	}
	utils.WriteJSON(w, http.StatusOK, latest)
}

// writeServiceError maps a store failure to 503 and anything else to 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, db.ErrStoreUnavailable) {
		status = http.StatusServiceUnavailable
	}
	slog.Error(op+": load readings failed", "status", status, "error", err)
	utils.WriteError(w, status, err.Error())
}
