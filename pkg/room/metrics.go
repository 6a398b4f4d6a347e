package room

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// roomMetrics tracks the session's traffic. All methods are nil-safe so
// rooms without a registry skip bookkeeping entirely.
type roomMetrics struct {
	eventsTotal  *prometheus.CounterVec
	movesTotal   prometheus.Counter
	revertsTotal prometheus.Counter
	peerBans     prometheus.Counter
	connected    prometheus.Gauge
}

func newRoomMetrics(reg prometheus.Registerer) *roomMetrics {
	factory := promauto.With(reg)
	return &roomMetrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonkgo",
			Subsystem: "room",
			Name:      "events_total",
			Help:      "Incoming socket events by code",
		}, []string{"code"}),
		movesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bonkgo",
			Subsystem: "room",
			Name:      "moves_total",
			Help:      "Accepted player moves from both transports",
		}),
		revertsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bonkgo",
			Subsystem: "room",
			Name:      "move_reverts_total",
			Help:      "Peer moves reverted for missing socket confirmation",
		}),
		peerBans: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bonkgo",
			Subsystem: "room",
			Name:      "peer_bans_total",
			Help:      "Peer channels banned after repeated reverts",
		}),
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bonkgo",
			Subsystem: "room",
			Name:      "connected",
			Help:      "Whether the room session is connected",
		}),
	}
}

func (m *roomMetrics) event(code EventCode) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(strconv.Itoa(int(code))).Inc()
}

func (m *roomMetrics) move() {
	if m == nil {
		return
	}
	m.movesTotal.Inc()
}

func (m *roomMetrics) revert() {
	if m == nil {
		return
	}
	m.revertsTotal.Inc()
}

func (m *roomMetrics) peerBan() {
	if m == nil {
		return
	}
	m.peerBans.Inc()
}

func (m *roomMetrics) setConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}
