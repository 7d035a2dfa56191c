package mesh

import (
	"sync"

	"github.com/google/uuid"
)

// MeshId is a stable handle into a Library. Bodies that share geometry hold
// the same MeshId rather than a copy of the mesh.
type MeshId string

// Library owns the meshes of a scene. Lookups take a read lock only; the
// meshes themselves are immutable and need no locking once handed out.
type Library struct {
	mu     sync.RWMutex
	meshes map[MeshId]*Mesh
	names  map[string]MeshId
}

func NewLibrary() *Library {
	return &Library{
		meshes: make(map[MeshId]*Mesh),
		names:  make(map[string]MeshId),
	}
}

// Add registers m under a fresh id. A non-empty name makes it reachable
// through Lookup as well; re-using a name rebinds it.
func (l *Library) Add(name string, m *Mesh) MeshId {
	id := MeshId(uuid.NewString())

	l.mu.Lock()
	defer l.mu.Unlock()
	l.meshes[id] = m
	if name != "" {
		l.names[name] = id
	}
	return id
}

func (l *Library) Get(id MeshId) (*Mesh, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.meshes[id]
	return m, ok
}

func (l *Library) Lookup(name string) (MeshId, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.names[name]
	return id, ok
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.meshes)
}
