package controllers

import (
	"net/http"
	"staffping/internal/monitor"
	"staffping/internal/providers"

	json "github.com/goccy/go-json"
)

type ApiController struct {
	logger  providers.Logger
	monitor monitor.MonitorInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, mon monitor.MonitorInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		monitor: mon,
		cache:   cache,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// GetOnline serves the staff currently observed online.
func (ac *ApiController) GetOnline(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "online", func() (any, error) {
		snap := ac.monitor.Snapshot()
		return map[string]any{
			"online_staff": snap.OnlineStaff,
			"degraded":     snap.Degraded,
		}, nil
	})
}

// GetLastSeen serves the rank-level and per-staff last-seen timestamps.
func (ac *ApiController) GetLastSeen(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "lastseen", func() (any, error) {
		snap := ac.monitor.Snapshot()
		return map[string]any{
			"ranks": snap.RankLastSeen,
			"staff": snap.StaffLastSeen,
		}, nil
	})
}
