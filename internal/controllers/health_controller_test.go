package controllers

import (
	"net/http"
	"net/http/httptest"
	"staffping/internal/monitor"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthOK(t *testing.T) {
	hc := NewHealthController(&snapshotMonitor{snap: monitor.Snapshot{LastCycleOK: 1700000000000}})

	rec := httptest.NewRecorder()
	hc.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1700000000000, body["last_cycle_ok"])
	assert.NotContains(t, body, "outage_since")
}

func TestHealthDegradedDuringOutage(t *testing.T) {
	hc := NewHealthController(&snapshotMonitor{snap: monitor.Snapshot{
		Outage:      true,
		OutageSince: 1700000000000,
	}})

	rec := httptest.NewRecorder()
	hc.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.EqualValues(t, 1700000000000, body["outage_since"])
}

func TestHealthRejectsPost(t *testing.T) {
	hc := NewHealthController(&snapshotMonitor{})

	rec := httptest.NewRecorder()
	hc.Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
