package mutex

import (
	"github.com/mirkobrombin/go-lockbox/v1/lock"
)

const (
	recordName = "Mutex"
	fieldInner = "inner"
	expecting  = "a record named Mutex with field 'inner'"

	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

// Mutex is a lock.Value that encodes as a record with a single field,
// "inner", holding the encoding of the guarded value.
//
// The embedded primitive is promoted unchanged, so m.Lock, m.Do, m.Load and
// the rest of lock.Value work directly on a Mutex.
type Mutex[T any] struct {
	*lock.Value[T]
}

// New returns an unlocked Mutex holding v.
func New[T any](v T) *Mutex[T] {
	return &Mutex[T]{Value: lock.NewValue(v)}
}

// From adopts an existing primitive without copying it. A nil p is replaced
// by a fresh primitive holding the zero T.
func From[T any](p *lock.Value[T]) *Mutex[T] {
	if p == nil {
		p = lock.NewValue(*new(T))
	}
	return &Mutex[T]{Value: p}
}

// FromValue is New under the name used alongside From.
func FromValue[T any](v T) *Mutex[T] {
	return New(v)
}

// Primitive returns the underlying lock.Value.
func (m *Mutex[T]) Primitive() *lock.Value[T] {
	return m.Value
}

// Into is an alias for Primitive.
func (m *Mutex[T]) Into() *lock.Value[T] {
	return m.Value
}

// withInner runs fn on the guarded value while holding the lock. A Mutex
// without a primitive behaves as if it held the zero T.
func (m Mutex[T]) withInner(fn func(v *T) error) error {
	if m.Value == nil {
		var zero T
		return fn(&zero)
	}
	return m.Value.Do(fn)
}

// replace installs a fresh primitive holding v.
func (m *Mutex[T]) replace(v T) {
	m.Value = lock.NewValue(v)
}
