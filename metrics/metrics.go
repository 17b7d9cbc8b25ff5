// Package metrics exports grove frame statistics to Prometheus.
package metrics

import (
	"github.com/phanxgames/grove"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	categoryLabel = "category"
	reasonLabel   = "reason"
)

// Collector is a grove.StatsObserver that records every completed frame.
// Register it with Hub.AddObserver.
type Collector struct {
	frames            prometheus.Counter
	generation        prometheus.Gauge
	cameras           prometheus.Gauge
	batches           prometheus.Gauge
	instances         prometheus.Gauge
	visibleBatches    prometheus.Gauge
	drawnInstances    prometheus.Gauge
	drawCalls         prometheus.Gauge
	culledTotal       *prometheus.CounterVec
	visibleByCategory *prometheus.GaugeVec
}

// NewCollector creates a collector whose metrics are registered with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		frames: f.NewCounter(prometheus.CounterOpts{
			Name: "grove_frames_total",
			Help: "The number of completed frames.",
		}),
		generation: f.NewGauge(prometheus.GaugeOpts{
			Name: "grove_collection_generation",
			Help: "The batch collection the last frame rendered.",
		}),
		cameras: f.NewGauge(prometheus.GaugeOpts{
			Name: "grove_cameras",
			Help: "The number of cameras evaluated in the last frame.",
		}),
		batches: f.NewGauge(prometheus.GaugeOpts{
			Name: "grove_batches",
			Help: "The number of collected batches.",
		}),
		instances: f.NewGauge(prometheus.GaugeOpts{
			Name: "grove_instances",
			Help: "The number of collected instances.",
		}),
		visibleBatches: f.NewGauge(prometheus.GaugeOpts{
			Name: "grove_visible_batches",
			Help: "The number of batches that survived culling in the last frame, summed over cameras.",
		}),
		drawnInstances: f.NewGauge(prometheus.GaugeOpts{
			Name: "grove_drawn_instances",
			Help: "The number of instances submitted in the last frame.",
		}),
		drawCalls: f.NewGauge(prometheus.GaugeOpts{
			Name: "grove_draw_calls",
			Help: "The number of instanced draw calls in the last frame.",
		}),
		culledTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grove_culled_batches_total",
			Help: "The total number of batches rejected, by reason.",
		}, []string{reasonLabel}),
		visibleByCategory: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "grove_visible_batches_by_category",
			Help: "The number of visible batches in the last frame, by category.",
		}, []string{categoryLabel}),
	}
}

// ObserveFrame implements grove.StatsObserver.
func (c *Collector) ObserveFrame(s grove.FrameStats) {
	c.frames.Inc()
	c.generation.Set(float64(s.Generation))
	c.cameras.Set(float64(s.Cameras))
	c.batches.Set(float64(s.TotalBatches))
	c.instances.Set(float64(s.TotalInstances))
	c.visibleBatches.Set(float64(s.VisibleBatches))
	c.drawnInstances.Set(float64(s.DrawnInstances))
	c.drawCalls.Set(float64(s.DrawCalls))

	c.culled("frustum", s.CulledByFrustum)
	c.culled("distance", s.CulledByDistance)
	c.culled("facing", s.CulledByFacing)
	c.culled("missing", s.SkippedMissing)

	for _, cat := range grove.Categories() {
		c.visibleByCategory.
			With(prometheus.Labels{categoryLabel: cat.String()}).
			Set(float64(s.VisibleByCategory.Get(cat)))
	}
}

func (c *Collector) culled(reason string, n int) {
	c.culledTotal.
		With(prometheus.Labels{reasonLabel: reason}).
		Add(float64(n))
}

var _ grove.StatsObserver = (*Collector)(nil)
