// Package pass provides a named collection of render passes and the
// reductions that flatten them into a single image.
//
// Composite reduction is summation-based (clamped additive accumulate),
// not alpha-over compositing. This mirrors the behavior renderers
// downstream of this toolkit already depend on, but it is a suspect
// choice: passes carrying alpha are added like any other channel. Any
// change to alpha-aware reduction must be deliberate; the additive
// behavior is pinned by tests.
package pass

import (
	"github.com/mrjoshuak/exrproc/composite"
	"github.com/mrjoshuak/exrproc/pixel"
)

// Pass is a named raster layer representing one render output channel
// group (depth, normal, albedo, and so on).
type Pass struct {
	// Name is the pass's key within a Store.
	Name string

	// Layer is the channel-name prefix used when the pass is written
	// to a layered EXR file. Defaults to Name.
	Layer string

	// Image holds the pass's samples.
	Image *pixel.Buffer

	// IsAlpha marks passes whose payload is coverage rather than color.
	IsAlpha bool
}

// NewPass creates a pass with a freshly zeroed buffer. The layer name
// defaults to the pass name.
func NewPass(name string, width, height, channels int, isAlpha bool) *Pass {
	return &Pass{
		Name:    name,
		Layer:   name,
		Image:   pixel.New(width, height, channels),
		IsAlpha: isAlpha,
	}
}

// Store owns a set of passes keyed by unique name. Passes are kept in
// an arena in insertion order with a name index on the side; lookups by
// unused names return nil, never create.
type Store struct {
	passes []*Pass
	index  map[string]int
}

// NewStore creates an empty pass store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add inserts a pass with a freshly zeroed buffer under the given name,
// replacing any existing pass with that name. The new pass is returned.
func (s *Store) Add(name string, width, height, channels int, isAlpha bool) *Pass {
	p := NewPass(name, width, height, channels, isAlpha)
	s.Put(p)
	return p
}

// Put inserts or replaces a pass under p.Name.
func (s *Store) Put(p *Pass) {
	if i, ok := s.index[p.Name]; ok {
		s.passes[i] = p
		return
	}
	s.index[p.Name] = len(s.passes)
	s.passes = append(s.passes, p)
}

// Get returns the pass with the given name, or nil if none exists.
func (s *Store) Get(name string) *Pass {
	if i, ok := s.index[name]; ok {
		return s.passes[i]
	}
	return nil
}

// Has returns true if a pass with the given name exists.
func (s *Store) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of passes in the store.
func (s *Store) Len() int { return len(s.passes) }

// Names returns the pass names in insertion order.
func (s *Store) Names() []string {
	names := make([]string, len(s.passes))
	for i, p := range s.passes {
		names[i] = p.Name
	}
	return names
}

// Passes returns the stored passes in insertion order.
func (s *Store) Passes() []*Pass {
	out := make([]*Pass, len(s.passes))
	copy(out, s.passes)
	return out
}

// Clear removes all passes.
func (s *Store) Clear() {
	s.passes = nil
	s.index = make(map[string]int)
}

// Composite flattens the named passes into a single image: the first
// named pass that exists is copied, and each subsequent existing pass
// is added on top with full opacity, clamped per sample. Names with no
// matching pass are silently skipped. Returns nil when no name matches.
func (s *Store) Composite(names []string) *pixel.Buffer {
	var out *pixel.Buffer
	for _, name := range names {
		p := s.Get(name)
		if p == nil {
			continue
		}
		if out == nil {
			out = p.Image.Clone()
			continue
		}
		composite.Add(out, p.Image, 1.0)
	}
	return out
}

// BlendPasses linearly interpolates two passes per channel:
// p1*(1-factor) + p2*factor. The pass images must share width and
// height; otherwise composite.ErrDimensionMismatch is returned and no
// output is produced.
func BlendPasses(p1, p2 *Pass, factor float32) (*pixel.Buffer, error) {
	return composite.Lerp(p1.Image, p2.Image, factor)
}
