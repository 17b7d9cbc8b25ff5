package grove

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshHandle identifies a mesh owned by a Resources arena. Zero is invalid.
type MeshHandle uint32

// MaterialHandle identifies a material owned by a Resources arena. Zero is
// invalid.
type MaterialHandle uint32

// MeshInfo describes a mesh registered with the arena. The vertex data itself
// lives with the renderer; grove only needs local bounds and slot count.
type MeshInfo struct {
	Name      string
	Bounds    AABB // local-space bounds around the mesh pivot
	Submeshes int  // number of material slots; values below 1 mean 1
}

// Extent returns the largest distance from the pivot to the bounds, used to
// pad batch bounds by instance scale.
func (m MeshInfo) Extent() float32 {
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		v[i] = max(abs32(m.Bounds.Min[i]), abs32(m.Bounds.Max[i]))
	}
	return v.Len()
}

// MaterialInfo describes a material registered with the arena.
type MaterialInfo struct {
	Name  string
	Color Color
}

type meshSlot struct {
	info  MeshInfo
	alive bool
}

type materialSlot struct {
	info  MaterialInfo
	alive bool
}

// Resources is an arena of meshes and materials addressed by integer handles.
// Handles are never reused after release, so a stale handle always fails to
// resolve. All methods are safe for concurrent use.
type Resources struct {
	mu        sync.RWMutex
	meshes    []meshSlot
	materials []materialSlot
	byName    map[string]MeshHandle
}

// NewResources creates an empty arena.
func NewResources() *Resources {
	return &Resources{byName: make(map[string]MeshHandle)}
}

// CreateMesh registers a mesh and returns its handle.
func (r *Resources) CreateMesh(info MeshInfo) MeshHandle {
	if info.Submeshes < 1 {
		info.Submeshes = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meshes = append(r.meshes, meshSlot{info: info, alive: true})
	h := MeshHandle(len(r.meshes))
	if info.Name != "" {
		r.byName[info.Name] = h
	}
	return h
}

// Mesh resolves h. ok is false for zero, unknown or released handles.
func (r *Resources) Mesh(h MeshHandle) (MeshInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h == 0 || int(h) > len(r.meshes) || !r.meshes[h-1].alive {
		return MeshInfo{}, false
	}
	return r.meshes[h-1].info, true
}

// MeshByName returns the most recently created live mesh with the given name.
func (r *Resources) MeshByName(name string) (MeshHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byName[name]
	if !ok || !r.meshes[h-1].alive {
		return 0, false
	}
	return h, true
}

// ReleaseMesh frees a mesh. Releasing an invalid handle is a no-op.
func (r *Resources) ReleaseMesh(h MeshHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == 0 || int(h) > len(r.meshes) {
		return
	}
	s := &r.meshes[h-1]
	if s.alive && r.byName[s.info.Name] == h {
		delete(r.byName, s.info.Name)
	}
	s.alive = false
}

// CreateMaterial registers a material and returns its handle.
func (r *Resources) CreateMaterial(info MaterialInfo) MaterialHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials = append(r.materials, materialSlot{info: info, alive: true})
	return MaterialHandle(len(r.materials))
}

// Material resolves h. ok is false for zero, unknown or released handles.
func (r *Resources) Material(h MaterialHandle) (MaterialInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h == 0 || int(h) > len(r.materials) || !r.materials[h-1].alive {
		return MaterialInfo{}, false
	}
	return r.materials[h-1].info, true
}

// ReleaseMaterial frees a material. Releasing an invalid handle is a no-op.
func (r *Resources) ReleaseMaterial(h MaterialHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == 0 || int(h) > len(r.materials) {
		return
	}
	r.materials[h-1].alive = false
}

// ReleaseAll frees every mesh and material. Previously issued handles stay
// invalid; new handles continue from where the arena left off.
func (r *Resources) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.meshes {
		r.meshes[i].alive = false
	}
	for i := range r.materials {
		r.materials[i].alive = false
	}
	clear(r.byName)
}

// Live returns the number of live meshes and materials.
func (r *Resources) Live() (meshes, materials int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.meshes {
		if s.alive {
			meshes++
		}
	}
	for _, s := range r.materials {
		if s.alive {
			materials++
		}
	}
	return meshes, materials
}

// MeshSet is an ordered list of mesh variants sharing per-slot materials,
// e.g. six tree shapes all drawn with the bark and leaf materials.
type MeshSet struct {
	Variants  []MeshHandle
	Materials []MaterialHandle // one per submesh slot
}

// Validate reports the first unresolvable handle in the set.
func (s MeshSet) Validate(r *Resources) error {
	if len(s.Variants) == 0 {
		return fmt.Errorf("grove: mesh set has no variants")
	}
	for i, h := range s.Variants {
		if _, ok := r.Mesh(h); !ok {
			return fmt.Errorf("grove: mesh variant %d: invalid handle %d", i, h)
		}
	}
	if len(s.Materials) == 0 {
		return fmt.Errorf("grove: mesh set has no materials")
	}
	for i, h := range s.Materials {
		if _, ok := r.Material(h); !ok {
			return fmt.Errorf("grove: material slot %d: invalid handle %d", i, h)
		}
	}
	return nil
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
