package tasks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts page reads and batch writes against the Spotify API.
type Metrics struct {
	PageRequests *prometheus.CounterVec
	BatchItems   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PageRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likeswap_page_requests_total",
				Help: "Total number of paginated listing requests.",
			},
			[]string{"listing", "result"},
		),
		BatchItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likeswap_batch_items_total",
				Help: "Total number of track ids sent in add/remove batches.",
			},
			[]string{"op", "result"},
		),
	}
}

// RecordPage records one page request. Nil receivers are ignored.
func (m *Metrics) RecordPage(listing string, err error) {
	if m == nil {
		return
	}
	m.PageRequests.WithLabelValues(listing, result(err)).Inc()
}

// RecordBatch records the ids of one batch. Nil receivers are ignored.
func (m *Metrics) RecordBatch(op Op, items int, err error) {
	if m == nil {
		return
	}
	m.BatchItems.WithLabelValues(op.String(), result(err)).Add(float64(items))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
