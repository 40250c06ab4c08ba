package monitor

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/fishduel/models"
)

func newMonitor(t *testing.T) *Monitor {
	t.Helper()
	m, err := NewMonitor("fishduel", prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestMonitor_RoomLifecycle(t *testing.T) {
	m := newMonitor(t)
	m.RecordRoom(models.RoomRecord{Event: models.RoomCreated})
	m.RecordRoom(models.RoomRecord{Event: models.RoomCreated})
	m.RecordRoom(models.RoomRecord{Event: models.RoomClosed})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Metrics().ActiveRooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Metrics().RoomsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Metrics().RoomsClosed))
}

func TestMonitor_CatchesByType(t *testing.T) {
	m := newMonitor(t)
	m.RecordCatch(models.CatchRecord{FishType: models.FishLarge})
	m.RecordCatch(models.CatchRecord{FishType: models.FishLarge})
	m.RecordCatch(models.CatchRecord{FishType: models.FishSmall})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Metrics().FishCaught.WithLabelValues("large")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Metrics().FishCaught.WithLabelValues("small")))
}

func TestMonitor_Connections(t *testing.T) {
	m := newMonitor(t)
	m.IncOnlineConnections()
	m.IncOnlineConnections()
	m.DecOnlineConnections()
	m.IncMessagesReceived("moveBoat")
	m.IncMessagesDropped("rate_limited")
	m.ObserveMessageLatency(time.Millisecond)
	m.ObserveFishingWait(3 * time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Metrics().OnlineConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Metrics().MessagesReceived.WithLabelValues("moveBoat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Metrics().MessagesDropped.WithLabelValues("rate_limited")))
}

func TestMonitor_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMonitor("fishduel", reg)
	require.NoError(t, err)
	_, err = NewMonitor("fishduel", reg)
	assert.Error(t, err)
}

func TestMonitor_Handler(t *testing.T) {
	m := newMonitor(t)
	m.RecordRoom(models.RoomRecord{Event: models.RoomCreated})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fishduel_active_rooms 1")
	assert.Contains(t, string(body), "fishduel_rooms_created_total 1")
}
