package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and histograms exposed at /metrics, covering
// the protocol and transport layers the handlers drive.
type Metrics struct {
	FramesSent      prometheus.Counter
	FramesReceived  prometheus.Counter
	FrameRetries    prometheus.Counter
	TransferErrors  prometheus.Counter
	BytesSent       prometheus.Counter
	BytesReceived   prometheus.Counter
	TransferSeconds prometheus.Histogram
}

// NewMetrics registers the server's Prometheus collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FramesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "dpsk_modem_frames_sent_total",
			Help: "Number of protocol frames transmitted.",
		}),
		FramesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "dpsk_modem_frames_received_total",
			Help: "Number of protocol frames received.",
		}),
		FrameRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "dpsk_modem_frame_retries_total",
			Help: "Number of Stop-and-Wait ARQ retries.",
		}),
		TransferErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "dpsk_modem_transfer_errors_total",
			Help: "Number of file transfers that ended in an error.",
		}),
		BytesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "dpsk_modem_bytes_sent_total",
			Help: "Total payload bytes sent.",
		}),
		BytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "dpsk_modem_bytes_received_total",
			Help: "Total payload bytes received.",
		}),
		TransferSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dpsk_modem_transfer_duration_seconds",
			Help:    "Wall-clock duration of completed file transfers.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
