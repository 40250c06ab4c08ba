// monitor/monitor.go
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wfunc/fishduel/models"
)

type Metrics struct {
	OnlineConnections prometheus.Gauge
	ActiveRooms       prometheus.Gauge
	RoomsCreated      prometheus.Counter
	RoomsClosed       prometheus.Counter
	MessagesReceived  *prometheus.CounterVec
	MessagesDropped   *prometheus.CounterVec
	MessageLatency    prometheus.Histogram
	FishCaught        *prometheus.CounterVec
	FishingWait       prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OnlineConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_connections",
			Help:      "Number of open websocket connections",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of active rooms",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Total number of rooms created",
		}),
		RoomsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_closed_total",
			Help:      "Total number of rooms closed",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of messages received by event",
		}, []string{"event"}),
		MessagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Inbound messages dropped before dispatch",
		}, []string{"reason"}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		FishCaught: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fish_caught_total",
			Help:      "Total number of fish caught by type",
		}, []string{"type"}),
		FishingWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fishing_wait_seconds",
			Help:      "Time between startFishing and its resolution",
			Buckets:   prometheus.LinearBuckets(1, 0.5, 10),
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.OnlineConnections,
		m.ActiveRooms,
		m.RoomsCreated,
		m.RoomsClosed,
		m.MessagesReceived,
		m.MessagesDropped,
		m.MessageLatency,
		m.FishCaught,
		m.FishingWait,
	}
}

// Monitor 收集游戏指标, also records room lifecycle as a room recorder.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

// NewMonitor registers its metrics on registry. Each server gets its own
// registry so tests never collide on the global one.
func NewMonitor(namespace string, registry *prometheus.Registry) (*Monitor, error) {
	metrics := NewMetrics(namespace)
	for _, c := range metrics.collectors() {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return &Monitor{
		metrics:   metrics,
		registry:  registry,
		startTime: time.Now(),
	}, nil
}

// Handler 暴露 /metrics
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}

func (m *Monitor) IncOnlineConnections() {
	m.metrics.OnlineConnections.Inc()
}

func (m *Monitor) DecOnlineConnections() {
	m.metrics.OnlineConnections.Dec()
}

func (m *Monitor) IncMessagesReceived(event string) {
	m.metrics.MessagesReceived.WithLabelValues(event).Inc()
}

func (m *Monitor) IncMessagesDropped(reason string) {
	m.metrics.MessagesDropped.WithLabelValues(reason).Inc()
}

func (m *Monitor) ObserveMessageLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}

func (m *Monitor) ObserveFishingWait(duration time.Duration) {
	m.metrics.FishingWait.Observe(duration.Seconds())
}

func (m *Monitor) RecordRoom(rec models.RoomRecord) {
	switch rec.Event {
	case models.RoomCreated:
		m.metrics.RoomsCreated.Inc()
		m.metrics.ActiveRooms.Inc()
	case models.RoomClosed:
		m.metrics.RoomsClosed.Inc()
		m.metrics.ActiveRooms.Dec()
	}
}

func (m *Monitor) RecordCatch(rec models.CatchRecord) {
	m.metrics.FishCaught.WithLabelValues(string(rec.FishType)).Inc()
}
