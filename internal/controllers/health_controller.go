package controllers

import (
	"fmt"
	"net/http"
	"staffping/internal/monitor"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	monitor   monitor.MonitorInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	LastCycleOK   int64   `json:"last_cycle_ok"`
	OutageSince   int64   `json:"outage_since,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := hc.monitor.Snapshot()
	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		LastCycleOK:   snap.LastCycleOK,
	}
	if snap.Outage {
		resp.Status = "degraded"
		resp.OutageSince = snap.OutageSince
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(mon monitor.MonitorInterface) *HealthController {
	return &HealthController{
		monitor:   mon,
		startTime: time.Now(),
	}
}
