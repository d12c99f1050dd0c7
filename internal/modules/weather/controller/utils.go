package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"
)

const maxHistoryHours = 8760

// parseHistoryQuery returns the lookback from the optional "hours" parameter,
// or def when it is absent.
func parseHistoryQuery(r *http.Request, def time.Duration) (time.Duration, error) {
	s := r.URL.Query().Get("hours")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'hours' (expected integer)")
	}
	if n <= 0 {
		return 0, errors.New("'hours' must be > 0")
	}
	if n > maxHistoryHours {
		return 0, errors.New("'hours' must be <= 8760")
	}
	return time.Duration(n) * time.Hour, nil
}
