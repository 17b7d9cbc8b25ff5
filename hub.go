package grove

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// Source provides instanced batches to a Hub. Batches is called during
// collection only; the returned slice is kept until the next collection and
// must not be mutated by the source afterwards.
type Source interface {
	Batches() []InstanceBatch
}

// ActiveSource is a Source that can be switched off. Inactive sources are
// skipped during discovery unless Hub.IncludeInactive is set.
type ActiveSource interface {
	Source
	Active() bool
}

// StaticSource is a Source over a fixed batch list. Call Hub.NotifyDirty
// after replacing List.
type StaticSource struct {
	List []InstanceBatch
}

// Batches returns s.List.
func (s *StaticSource) Batches() []InstanceBatch { return s.List }

// DrawCall is one instanced draw submitted to a Renderer.
type DrawCall struct {
	Mesh           MeshHandle
	Submesh        int
	Material       MaterialHandle
	Matrices       []mgl32.Mat4
	Shadow         ShadowMode
	ReceiveShadows bool
	Layer          int
	Category       Category
	Camera         string
	Pass           Pass
}

// Renderer receives instanced draws. The Matrices slice is only valid for the
// duration of the call.
type Renderer interface {
	DrawMeshInstanced(call DrawCall)
}

// BoundsRenderer is implemented by renderers that visualise batch bounds.
// When Hub.DebugBounds is set, every evaluated batch is reported with its
// visibility.
type BoundsRenderer interface {
	DrawBounds(bounds AABB, category Category, visible bool)
}

// StatsObserver receives the statistics of every completed frame.
type StatsObserver interface {
	ObserveFrame(stats FrameStats)
}

// DiscoveryMode selects which registered sources a collection considers.
type DiscoveryMode uint8

const (
	DiscoverAll   DiscoveryMode = iota // every registered source
	DiscoverGroup                      // only sources registered under Hub.Group
)

// HubState is the lifecycle phase of a Hub.
type HubState uint32

const (
	HubIdle        HubState = iota // no collection has happened yet
	HubDiscovering                 // selecting sources
	HubCollecting                  // gathering batches
	HubReady                       // batch list published, frames may run
	HubEvaluating                  // culling for one or more cameras
	HubDrawing                     // submitting draws
)

var hubStateNames = [...]string{"idle", "discovering", "collecting", "ready", "evaluating", "drawing"}

func (s HubState) String() string {
	if int(s) < len(hubStateNames) {
		return hubStateNames[s]
	}
	return "unknown"
}

// FrameStats summarises one frame across every camera evaluated in it.
type FrameStats struct {
	Frame      uint64 // frame counter, starting at 1
	Generation uint64 // collection the frame rendered
	Cameras    int

	TotalBatches   int
	TotalInstances int
	VisibleBatches int
	DrawnInstances int
	DrawCalls      int

	CulledByFrustum  int
	CulledByDistance int
	CulledByFacing   int
	SkippedMissing   int

	VisibleByCategory CategoryCounts
}

// add merges one camera's counters into s.
func (s *FrameStats) add(o *CameraResult) {
	s.Cameras++
	s.VisibleBatches += o.VisibleBatches
	s.DrawnInstances += o.DrawnInstances
	s.DrawCalls += o.DrawCalls
	s.CulledByFrustum += o.CulledByFrustum
	s.CulledByDistance += o.CulledByDistance
	s.CulledByFacing += o.CulledByFacing
	s.SkippedMissing += o.SkippedMissing
	for i, v := range o.VisibleByCategory {
		s.VisibleByCategory[i] += v
	}
}

// CameraResult is the outcome of evaluating one camera. Visible holds indices
// into the evaluated snapshot in draw order.
type CameraResult struct {
	Camera     string
	Pass       Pass
	Generation uint64

	Visible []int
	Culled  []int // filled only when Hub.DebugBounds is set

	VisibleBatches   int
	DrawnInstances   int
	DrawCalls        int
	CulledByFrustum  int
	CulledByDistance int
	CulledByFacing   int
	SkippedMissing   int

	VisibleByCategory CategoryCounts

	snap *batchSnapshot
}

// batchSnapshot is an immutable collection result.
type batchSnapshot struct {
	generation     uint64
	batches        []InstanceBatch
	totalInstances int
	dropped        int
}

type registration struct {
	src   Source
	group string
}

// Hub is the registry of batch sources and the per-frame culling and draw
// submission point. Registration, NotifyDirty, LatestStats and Evaluate are
// safe for concurrent use; frame calls (BeginFrame, EvaluateAndDraw, EndFrame,
// DrawFrame) must come from one goroutine.
type Hub struct {
	// Settings controls culling.
	Settings CullSettings
	// Discovery and Group restrict which registered sources are collected.
	Discovery DiscoveryMode
	Group     string
	// IncludeInactive collects ActiveSource implementations that report
	// inactive.
	IncludeInactive bool
	// Enabled switches draw submission. A disabled hub evaluates nothing.
	Enabled bool
	// TargetCamera, when set, restricts drawing to the camera with that name.
	TargetCamera string
	// Resources, when set, validates mesh and material handles at collection
	// and before every draw.
	Resources *Resources
	// DebugBounds reports every evaluated batch to BoundsRenderer renderers.
	DebugBounds bool

	mu        sync.Mutex // guards sources and observers
	sources   []registration
	observers []StatsObserver

	collectMu sync.Mutex // serializes RefreshAll

	snapshot   atomic.Pointer[batchSnapshot]
	generation atomic.Uint64
	dirty      atomic.Bool
	state      atomic.Uint32

	statsMu sync.Mutex
	frame   uint64
	open    bool
	current FrameStats
	latest  FrameStats

	debug    bool
	dstats   debugStats
	sortBuf  []int
	frameBeg time.Time
}

// NewHub creates an enabled hub with DefaultCullSettings.
func NewHub() *Hub {
	h := &Hub{
		Settings: DefaultCullSettings(),
		Enabled:  true,
	}
	h.snapshot.Store(&batchSnapshot{})
	return h
}

// SetDebugMode enables per-frame timing and counters on stderr.
func (h *Hub) SetDebugMode(enabled bool) { h.debug = enabled }

// State returns the current lifecycle phase.
func (h *Hub) State() HubState { return HubState(h.state.Load()) }

// Register adds src to the default group and marks the hub dirty.
func (h *Hub) Register(src Source) { h.RegisterGroup("", src) }

// RegisterGroup adds src under group and marks the hub dirty. Registering the
// same source twice is a no-op. src must be comparable, typically a pointer.
func (h *Hub) RegisterGroup(group string, src Source) {
	if src == nil {
		return
	}
	h.mu.Lock()
	for _, r := range h.sources {
		if r.src == src {
			h.mu.Unlock()
			return
		}
	}
	h.sources = append(h.sources, registration{src: src, group: group})
	h.mu.Unlock()
	h.NotifyDirty()
}

// Unregister removes src and marks the hub dirty.
func (h *Hub) Unregister(src Source) {
	h.mu.Lock()
	for i, r := range h.sources {
		if r.src == src {
			h.sources = append(h.sources[:i], h.sources[i+1:]...)
			h.mu.Unlock()
			h.NotifyDirty()
			return
		}
	}
	h.mu.Unlock()
}

// Sources returns the number of registered sources.
func (h *Hub) Sources() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sources)
}

// AddObserver subscribes o to frame statistics.
func (h *Hub) AddObserver(o StatsObserver) {
	if o == nil {
		return
	}
	h.mu.Lock()
	h.observers = append(h.observers, o)
	h.mu.Unlock()
}

// NotifyDirty schedules a re-collection at the next BeginFrame. Any number of
// notifications between two frames produce exactly one re-collection.
func (h *Hub) NotifyDirty() { h.dirty.Store(true) }

// Dirty reports whether a re-collection is pending.
func (h *Hub) Dirty() bool { return h.dirty.Load() }

// RefreshAll discovers sources and collects their batches immediately,
// replacing the published batch list wholesale. Malformed batches are dropped.
// Sources are called without the registry lock held, so Batches may register
// or unregister sources; such changes apply to the next collection. Batches
// must not call RefreshAll.
func (h *Hub) RefreshAll() {
	h.collectMu.Lock()
	defer h.collectMu.Unlock()

	h.dirty.Store(false)
	start := time.Now()

	h.state.Store(uint32(HubDiscovering))
	h.mu.Lock()
	selected := make([]Source, 0, len(h.sources))
	for _, r := range h.sources {
		if h.Discovery == DiscoverGroup && r.group != h.Group {
			continue
		}
		if a, ok := r.src.(ActiveSource); ok && !h.IncludeInactive && !a.Active() {
			continue
		}
		selected = append(selected, r.src)
	}
	h.mu.Unlock()

	h.state.Store(uint32(HubCollecting))
	snap := &batchSnapshot{generation: h.generation.Add(1)}
	for _, src := range selected {
		for _, b := range src.Batches() {
			if !h.wellFormed(&b) {
				snap.dropped++
				continue
			}
			snap.batches = append(snap.batches, b)
			snap.totalInstances += len(b.Matrices)
		}
	}
	h.snapshot.Store(snap)
	h.state.Store(uint32(HubReady))

	h.debugCollect(snap, len(selected), time.Since(start))
}

func (h *Hub) wellFormed(b *InstanceBatch) bool {
	if b.Mesh == 0 || b.Material == 0 || len(b.Matrices) == 0 {
		return false
	}
	if b.Bounds.IsEmpty() {
		return false
	}
	return h.resolves(b)
}

func (h *Hub) resolves(b *InstanceBatch) bool {
	if h.Resources == nil {
		return true
	}
	if _, ok := h.Resources.Mesh(b.Mesh); !ok {
		return false
	}
	_, ok := h.Resources.Material(b.Material)
	return ok
}

// Batches returns the published batch list. The slice must not be modified.
func (h *Hub) Batches() []InstanceBatch { return h.snapshot.Load().batches }

// Generation returns the number of collections performed so far.
func (h *Hub) Generation() uint64 { return h.snapshot.Load().generation }

// BeginFrame applies a pending re-collection and starts accumulating stats for
// a new frame. A frame still open from implicit EvaluateAndDraw calls is
// closed first, as if EndFrame had been called.
func (h *Hub) BeginFrame() {
	h.statsMu.Lock()
	open := h.open
	h.statsMu.Unlock()
	if open {
		h.EndFrame()
	}

	if h.dirty.Load() {
		h.RefreshAll()
	}
	snap := h.snapshot.Load()

	h.statsMu.Lock()
	h.frame++
	h.open = true
	h.current = FrameStats{
		Frame:          h.frame,
		Generation:     snap.generation,
		TotalBatches:   len(snap.batches),
		TotalInstances: snap.totalInstances,
	}
	h.statsMu.Unlock()
	h.dstats = debugStats{}
	h.frameBeg = time.Now()
}

// shouldDraw reports whether cam takes part in drawing.
func (h *Hub) shouldDraw(cam *Camera) bool {
	if !h.Enabled || cam == nil || !cam.Enabled {
		return false
	}
	return h.TargetCamera == "" || cam.Name == h.TargetCamera
}

// Evaluate culls the published batch list for cam without drawing. It never
// mutates the batch list and may run concurrently for different cameras.
func (h *Hub) Evaluate(cam *Camera) CameraResult {
	return h.evaluate(snapshotCamera(cam))
}

func (h *Hub) evaluate(v cameraView) CameraResult {
	snap := h.snapshot.Load()
	res := CameraResult{
		Camera:     v.name,
		Pass:       v.pass,
		Generation: snap.generation,
		snap:       snap,
	}
	for i := range snap.batches {
		b := &snap.batches[i]
		reason := h.Settings.cullBatch(&v, b)
		if reason == CullNone && !h.resolves(b) {
			reason = CullMissing
		}
		switch reason {
		case CullNone:
			res.Visible = append(res.Visible, i)
			res.VisibleBatches++
			res.DrawCalls++
			res.DrawnInstances += len(b.Matrices)
			res.VisibleByCategory.add(b.Category, 1)
			continue
		case CullFrustum:
			res.CulledByFrustum++
		case CullDistance:
			res.CulledByDistance++
		case CullFacing:
			res.CulledByFacing++
		case CullMissing:
			res.SkippedMissing++
		}
		if h.DebugBounds {
			res.Culled = append(res.Culled, i)
		}
	}
	return res
}

// EvaluateAndDraw culls for cam and submits one instanced draw per surviving
// batch to r. Calls outside BeginFrame/EndFrame open a frame implicitly; that
// frame is published by the next EndFrame or BeginFrame.
func (h *Hub) EvaluateAndDraw(cam *Camera, r Renderer) CameraResult {
	if !h.shouldDraw(cam) {
		return CameraResult{}
	}
	h.ensureFrame()
	h.state.Store(uint32(HubEvaluating))
	start := time.Now()
	res := h.Evaluate(cam)
	h.dstats.evalTime += time.Since(start)
	h.draw(&res, r)
	h.state.Store(uint32(HubReady))
	return res
}

func (h *Hub) ensureFrame() {
	h.statsMu.Lock()
	open := h.open
	h.statsMu.Unlock()
	if !open {
		h.BeginFrame()
	}
}

// draw submits the visible batches of res sorted by layer, then collection
// order, and accumulates its counters into the current frame.
func (h *Hub) draw(res *CameraResult, r Renderer) {
	h.state.Store(uint32(HubDrawing))
	start := time.Now()
	snap := res.snap
	if snap == nil {
		return
	}
	h.sortByLayer(res.Visible, snap.batches)

	for _, i := range res.Visible {
		b := &snap.batches[i]
		if r != nil {
			r.DrawMeshInstanced(DrawCall{
				Mesh:           b.Mesh,
				Submesh:        b.Submesh,
				Material:       b.Material,
				Matrices:       b.Matrices,
				Shadow:         b.Shadow,
				ReceiveShadows: b.ReceiveShadows,
				Layer:          b.Layer,
				Category:       b.Category,
				Camera:         res.Camera,
				Pass:           res.Pass,
			})
		}
	}
	if br, ok := r.(BoundsRenderer); ok && h.DebugBounds {
		for _, i := range res.Visible {
			br.DrawBounds(snap.batches[i].Bounds, snap.batches[i].Category, true)
		}
		for _, i := range res.Culled {
			br.DrawBounds(snap.batches[i].Bounds, snap.batches[i].Category, false)
		}
	}

	h.statsMu.Lock()
	h.current.add(res)
	h.statsMu.Unlock()

	h.dstats.drawTime += time.Since(start)
	h.dstats.cameras++
}

// DrawFrame runs a full frame: BeginFrame, parallel evaluation of every enabled
// camera, draw submission in camera order, EndFrame. It returns the frame's
// statistics.
func (h *Hub) DrawFrame(cams []*Camera, r Renderer) FrameStats {
	h.BeginFrame()

	views := make([]cameraView, 0, len(cams))
	for _, c := range cams {
		if h.shouldDraw(c) {
			views = append(views, snapshotCamera(c))
		}
	}

	h.state.Store(uint32(HubEvaluating))
	start := time.Now()
	results := make([]CameraResult, len(views))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range views {
		g.Go(func() error {
			results[i] = h.evaluate(views[i])
			return nil
		})
	}
	_ = g.Wait()
	h.dstats.evalTime += time.Since(start)

	for i := range results {
		h.draw(&results[i], r)
	}
	h.state.Store(uint32(HubReady))
	return h.EndFrame()
}

// EndFrame closes the current frame, publishes its statistics to LatestStats
// and every observer, and returns them.
func (h *Hub) EndFrame() FrameStats {
	h.statsMu.Lock()
	if !h.open {
		s := h.latest
		h.statsMu.Unlock()
		return s
	}
	h.open = false
	h.latest = h.current
	s := h.latest
	h.statsMu.Unlock()

	h.mu.Lock()
	observers := append([]StatsObserver(nil), h.observers...)
	h.mu.Unlock()
	for _, o := range observers {
		o.ObserveFrame(s)
	}

	h.dstats.frameTime = time.Since(h.frameBeg)
	h.debugFrame(s)
	return s
}

// LatestStats returns the statistics of the last completed frame. A frame
// completes at EndFrame (DrawFrame calls it), or at the next BeginFrame when
// it was opened implicitly by EvaluateAndDraw.
func (h *Hub) LatestStats() FrameStats {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	return h.latest
}

// --- Merge sort ---

// sortByLayer orders visible indices by batch layer, keeping collection order
// within a layer. Bottom-up merge sort: no allocations once sortBuf has grown.
func (h *Hub) sortByLayer(idx []int, batches []InstanceBatch) {
	n := len(idx)
	if n <= 1 {
		return
	}
	if cap(h.sortBuf) < n {
		h.sortBuf = make([]int, n)
	}
	h.sortBuf = h.sortBuf[:n]

	a := idx
	b := h.sortBuf
	swapped := false
	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi, batches)
		}
		a, b = b, a
		swapped = !swapped
	}
	if swapped {
		copy(idx, h.sortBuf)
	}
}

// drawLessOrEqual reports whether batch i sorts before or with batch j.
func drawLessOrEqual(batches []InstanceBatch, i, j int) bool {
	if batches[i].Layer != batches[j].Layer {
		return batches[i].Layer < batches[j].Layer
	}
	return i <= j
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []int, lo, mid, hi int, batches []InstanceBatch) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if drawLessOrEqual(batches, src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
