package bus

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/aretw0/axon/pkg/domain"
)

// Bus is a type-indexed map of per-execution resources.
// It holds at most one value per type and offers no enumeration.
// A Bus is owned by a single execution and is not safe for concurrent use.
type Bus struct {
	id    string
	slots map[reflect.Type]any
}

// New creates an empty Bus with a random identifier.
func New() *Bus {
	return NewWithID(uuid.NewString())
}

// NewWithID creates an empty Bus with a caller-chosen identifier.
// The identifier drives deterministic timeline sampling.
func NewWithID(id string) *Bus {
	return &Bus{id: id, slots: make(map[reflect.Type]any)}
}

// ID returns the stable identifier of the Bus.
func (b *Bus) ID() string { return b.id }

// Len returns the number of occupied slots.
func (b *Bus) Len() int { return len(b.slots) }

// Insert stores value in the slot for T, replacing any previous value.
func Insert[T any](b *Bus, value T) {
	v := value
	b.slots[reflect.TypeFor[T]()] = &v
}

// Get returns a copy of the value stored for T.
func Get[T any](b *Bus) (T, bool) {
	p, ok := GetMut[T](b)
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// GetMut returns a pointer into the slot for T, so callers can update it in place.
func GetMut[T any](b *Bus) (*T, bool) {
	v, ok := b.slots[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// Contains reports whether a value of type T is stored.
func Contains[T any](b *Bus) bool {
	_, ok := b.slots[reflect.TypeFor[T]()]
	return ok
}

// Remove deletes and returns the value stored for T.
func Remove[T any](b *Bus) (T, bool) {
	key := reflect.TypeFor[T]()
	v, ok := b.slots[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(b.slots, key)
	return *v.(*T), true
}

// AttachTimeline places a timeline collector on the Bus so every step of the
// execution appends to it.
func AttachTimeline(b *Bus, tl *domain.Timeline) {
	Insert(b, tl)
}

// TimelineOf returns the attached timeline, if any.
func TimelineOf(b *Bus) (*domain.Timeline, bool) {
	tl, ok := Get[*domain.Timeline](b)
	return tl, ok && tl != nil
}

// DetachTimeline removes the attached timeline and returns it.
func DetachTimeline(b *Bus) (*domain.Timeline, bool) {
	return Remove[*domain.Timeline](b)
}
