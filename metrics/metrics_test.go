package metrics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/grove"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorObserveFrame(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	var s grove.FrameStats
	s.Generation = 3
	s.Cameras = 2
	s.TotalBatches = 10
	s.TotalInstances = 400
	s.VisibleBatches = 6
	s.DrawnInstances = 250
	s.DrawCalls = 6
	s.CulledByFrustum = 9
	s.CulledByDistance = 4
	s.CulledByFacing = 1
	s.VisibleByCategory[grove.CategoryGrass] = 5
	s.VisibleByCategory[grove.CategoryRock] = 1

	c.ObserveFrame(s)
	c.ObserveFrame(s)

	require.Equal(t, float64(2), testutil.ToFloat64(c.frames))
	require.Equal(t, float64(3), testutil.ToFloat64(c.generation))
	require.Equal(t, float64(2), testutil.ToFloat64(c.cameras))
	require.Equal(t, float64(10), testutil.ToFloat64(c.batches))
	require.Equal(t, float64(400), testutil.ToFloat64(c.instances))
	require.Equal(t, float64(6), testutil.ToFloat64(c.visibleBatches))
	require.Equal(t, float64(250), testutil.ToFloat64(c.drawnInstances))
	require.Equal(t, float64(6), testutil.ToFloat64(c.drawCalls))

	require.Equal(t, float64(18), testutil.ToFloat64(c.culledTotal.WithLabelValues("frustum")))
	require.Equal(t, float64(8), testutil.ToFloat64(c.culledTotal.WithLabelValues("distance")))
	require.Equal(t, float64(2), testutil.ToFloat64(c.culledTotal.WithLabelValues("facing")))
	require.Equal(t, float64(0), testutil.ToFloat64(c.culledTotal.WithLabelValues("missing")))

	require.Equal(t, float64(5), testutil.ToFloat64(c.visibleByCategory.WithLabelValues("grass")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.visibleByCategory.WithLabelValues("rock")))
	require.Equal(t, len(grove.Categories()), testutil.CollectAndCount(c.visibleByCategory))
}

func TestCollectorRegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveFrame(grove.FrameStats{})

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, n := range []string{
		"grove_frames_total",
		"grove_batches",
		"grove_draw_calls",
		"grove_culled_batches_total",
		"grove_visible_batches_by_category",
	} {
		require.True(t, names[n], "missing %s", n)
	}

	require.Panics(t, func() { NewCollector(reg) }, "duplicate registration")
}

func TestCollectorNilRegisterer(t *testing.T) {
	c := NewCollector(nil)
	require.NotPanics(t, func() { c.ObserveFrame(grove.FrameStats{DrawCalls: 1}) })
	require.Equal(t, float64(1), testutil.ToFloat64(c.drawCalls))
}

func TestCollectorAsHubObserver(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	hub := grove.NewHub()
	center := mgl32.Vec3{0, 0, 10}
	hub.Register(&grove.StaticSource{List: []grove.InstanceBatch{{
		Mesh:     1,
		Material: 1,
		Matrices: []mgl32.Mat4{mgl32.Translate3D(center[0], center[1], center[2])},
		Bounds:   grove.NewAABB(center, mgl32.Vec3{2, 2, 2}),
		Category: grove.CategoryRock,
	}}})
	hub.AddObserver(c)

	cam := grove.NewCamera("main", 1)
	cam.LookAt(center)
	hub.DrawFrame([]*grove.Camera{cam}, nil)

	require.Equal(t, float64(1), testutil.ToFloat64(c.frames))
	require.Equal(t, float64(1), testutil.ToFloat64(c.batches))
	require.Equal(t, float64(1), testutil.ToFloat64(c.visibleByCategory.WithLabelValues("rock")))
}
