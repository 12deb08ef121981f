package lock

import (
	"sync"

	warperrors "github.com/mirkobrombin/go-lockbox/v1/errors"
)

// Value guards a single value of type T with a mutex.
//
// The zero Value holds the zero T and is ready for use. A Value must not be
// copied after first use.
type Value[T any] struct {
	mu sync.Mutex
	v  T
}

// NewValue returns an unlocked Value holding v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Lock acquires the lock, blocking until it is available.
func (l *Value[T]) Lock() { l.mu.Lock() }

// Unlock releases the lock.
func (l *Value[T]) Unlock() { l.mu.Unlock() }

// TryLock acquires the lock without waiting and reports whether it succeeded.
func (l *Value[T]) TryLock() bool { return l.mu.TryLock() }

// Ptr returns a pointer to the guarded value. The caller must hold the lock
// for as long as the pointer is used.
func (l *Value[T]) Ptr() *T { return &l.v }

// Do runs fn with exclusive access to the value. The lock is released on
// every exit path, including a panic in fn, so later callers are never
// locked out.
func (l *Value[T]) Do(fn func(v *T) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(&l.v)
}

// TryDo is like Do but returns ErrLockUnavailable immediately if the lock
// is already held.
func (l *Value[T]) TryDo(fn func(v *T) error) error {
	if !l.mu.TryLock() {
		return warperrors.ErrLockUnavailable
	}
	defer l.mu.Unlock()
	return fn(&l.v)
}

// Load returns a copy of the value.
func (l *Value[T]) Load() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.v
}

// Store replaces the value.
func (l *Value[T]) Store(v T) {
	l.mu.Lock()
	l.v = v
	l.mu.Unlock()
}

// Swap replaces the value and returns the previous one.
func (l *Value[T]) Swap(v T) (old T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old, l.v = l.v, v
	return old
}

var _ sync.Locker = (*Value[struct{}])(nil)
