// Package lock provides Value, a mutex that owns the value it protects.
// Access goes through the lock only, either with explicit Lock/Unlock pairs
// or with Do and TryDo, which release the lock on every exit path. A panic
// inside a critical section never leaves the lock held.
package lock
