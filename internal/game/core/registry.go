package core

import (
	"fmt"
	"sort"
)

// Registry exclusively owns every component of a game state.
// IDs are allocated from a per-registry counter that is copied with the
// registry, so two forks of the same state allocate identical IDs.
type Registry struct {
	nextID ComponentID
	byID   map[ComponentID]*Component
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[ComponentID]*Component)}
}

// Create adds a new component and returns it.
func (r *Registry) Create(typ, name string, owner int) *Component {
	c := &Component{id: r.nextID, owner: owner, typ: typ, name: name, props: make(map[string]Value)}
	r.byID[c.id] = c
	r.nextID++
	return c
}

// Get returns the component with the given ID, if it is still live.
func (r *Registry) Get(id ComponentID) (*Component, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Lookup is Get with an error for missing components.
func (r *Registry) Lookup(id ComponentID) (*Component, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("component %d: %w", id, ErrUnknownComponent)
	}
	return c, nil
}

func (r *Registry) Contains(id ComponentID) bool {
	_, ok := r.byID[id]
	return ok
}

// Remove destroys a component. Its ID is never reused.
func (r *Registry) Remove(id ComponentID) error {
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("remove component %d: %w", id, ErrUnknownComponent)
	}
	delete(r.byID, id)
	return nil
}

func (r *Registry) Len() int { return len(r.byID) }

// IDs returns all live IDs in ascending order.
func (r *Registry) IDs() []ComponentID {
	ids := make([]ComponentID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ByType returns live components of the given type ordered by ID.
func (r *Registry) ByType(typ string) []*Component {
	var out []*Component
	for _, id := range r.IDs() {
		if c := r.byID[id]; c.typ == typ {
			out = append(out, c)
		}
	}
	return out
}

// OwnedBy returns live components of the given type owned by player, ordered by ID.
// An empty typ matches every type.
func (r *Registry) OwnedBy(player int, typ string) []*Component {
	var out []*Component
	for _, id := range r.IDs() {
		c := r.byID[id]
		if c.owner == player && (typ == "" || c.typ == typ) {
			out = append(out, c)
		}
	}
	return out
}

// GetProperty reads key from the component with the given ID.
func (r *Registry) GetProperty(id ComponentID, key string) (Value, error) {
	c, err := r.Lookup(id)
	if err != nil {
		return Value{}, err
	}
	v, ok := c.Property(key)
	if !ok {
		return Value{}, fmt.Errorf("component %d has no property %q", id, key)
	}
	return v, nil
}

// SetProperty writes key on the component with the given ID. Changing the
// kind of an existing property is rejected.
func (r *Registry) SetProperty(id ComponentID, key string, v Value) error {
	c, err := r.Lookup(id)
	if err != nil {
		return err
	}
	if old, ok := c.Property(key); ok && old.kind != v.kind {
		return fmt.Errorf("component %d property %q is %s, not %s: %w", id, key, old.kind, v.kind, ErrPropertyKind)
	}
	c.SetProperty(key, v)
	return nil
}

// Copy returns a deep copy that shares no mutable data with r.
func (r *Registry) Copy() *Registry {
	c := &Registry{nextID: r.nextID, byID: make(map[ComponentID]*Component, len(r.byID))}
	for id, comp := range r.byID {
		c.byID[id] = comp.copy()
	}
	return c
}

func (r *Registry) hashInto(h *Hasher) {
	h.Int(int(r.nextID)).Int(len(r.byID))
	for _, id := range r.IDs() {
		r.byID[id].hashInto(h)
	}
}
