package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons used as label values on the drop counter.
const (
	DropInvalidCrop = "invalid_crop"
	DropEmptyDecode = "empty_decode"
	DropCropFailed  = "crop_failed"
)

// Metrics holds the pipeline's prometheus collectors. The pipeline owns the
// collectors; callers register them with a registry of their choosing.
type Metrics struct {
	ImagesProcessed prometheus.Counter
	RegionsDetected prometheus.Counter
	RegionsDropped  *prometheus.CounterVec
	ImageDuration   prometheus.Histogram
}

// NewMetrics creates an unregistered metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		ImagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "textdet",
			Name:      "images_processed_total",
			Help:      "Images run through the full pipeline.",
		}),
		RegionsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "textdet",
			Name:      "regions_detected_total",
			Help:      "Text regions produced by detection post-processing.",
		}),
		RegionsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "textdet",
			Name:      "regions_dropped_total",
			Help:      "Regions dropped before producing text, by reason.",
		}, []string{"reason"}),
		ImageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "textdet",
			Name:      "image_duration_seconds",
			Help:      "Wall time per image through the full pipeline.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

// Collectors returns all collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ImagesProcessed,
		m.RegionsDetected,
		m.RegionsDropped,
		m.ImageDuration,
	}
}

// Register registers all collectors with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
