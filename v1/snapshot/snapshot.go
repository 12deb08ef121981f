// Package snapshot persists mutex.Mutex values in Redis. A snapshot is the
// codec encoding of the record {"inner": value} taken under the lock, so it
// can be restored into a fresh, unlocked Mutex on any node.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mirkobrombin/go-lockbox/v1/codec"
	warperrors "github.com/mirkobrombin/go-lockbox/v1/errors"
	"github.com/mirkobrombin/go-lockbox/v1/metrics"
	"github.com/mirkobrombin/go-lockbox/v1/mutex"
)

var tracer = otel.Tracer("github.com/mirkobrombin/go-lockbox/v1/snapshot")

// Store saves and loads Mutex snapshots under string keys.
type Store[T any] struct {
	client redis.UniversalClient
	codec  codec.Codec
	prefix string
	notify bool
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithCodec overrides the default JSON codec.
func WithCodec[T any](c codec.Codec) Option[T] {
	return func(s *Store[T]) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithPrefix namespaces every key written by the store.
func WithPrefix[T any](prefix string) Option[T] {
	return func(s *Store[T]) {
		s.prefix = prefix
	}
}

// WithNotify publishes every saved snapshot on a Redis channel named after
// its key so that Watch subscribers receive it.
func WithNotify[T any]() Option[T] {
	return func(s *Store[T]) {
		s.notify = true
	}
}

// New returns a Store backed by client.
func New[T any](client redis.UniversalClient, opts ...Option[T]) *Store[T] {
	s := &Store[T]{client: client, codec: codec.JSONCodec{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[T]) key(key string) string {
	return s.prefix + key
}

// Save encodes m and stores it under key for ttl. A zero ttl keeps the
// snapshot until it is deleted.
func (s *Store[T]) Save(ctx context.Context, key string, m *mutex.Mutex[T], ttl time.Duration) (err error) {
	ctx, span := tracer.Start(ctx, "Snapshot.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("lockbox.snapshot.key", key),
		attribute.String("lockbox.snapshot.codec", s.codec.Name()),
	)
	defer func() {
		metrics.ObserveSnapshot("save", err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	data, err := s.codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("snapshot: encode %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		slog.Warn("lockbox: snapshot save failed", "key", key, "error", err)
		return err
	}
	if s.notify {
		if err := s.client.Publish(ctx, s.key(key), data).Err(); err != nil {
			slog.Warn("lockbox: snapshot notify failed", "key", key, "error", err)
			return err
		}
	}
	span.SetAttributes(attribute.Int("lockbox.snapshot.bytes", len(data)))
	return nil
}

// Load restores the snapshot stored under key. It returns ErrNotFound when
// no snapshot exists.
func (s *Store[T]) Load(ctx context.Context, key string) (m *mutex.Mutex[T], err error) {
	ctx, span := tracer.Start(ctx, "Snapshot.Load")
	defer span.End()
	span.SetAttributes(
		attribute.String("lockbox.snapshot.key", key),
		attribute.String("lockbox.snapshot.codec", s.codec.Name()),
	)
	defer func() {
		metrics.ObserveSnapshot("load", err)
		if err != nil && !errors.Is(err, warperrors.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.String("lockbox.snapshot.result", "miss"))
		return nil, warperrors.ErrNotFound
	}
	if err != nil {
		slog.Warn("lockbox: snapshot load failed", "key", key, "error", err)
		return nil, err
	}
	m = new(mutex.Mutex[T])
	if err := s.codec.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("snapshot: decode %q: %w", key, err)
	}
	if m.Primitive() == nil {
		// A stored null decodes to nothing.
		return nil, fmt.Errorf("snapshot: decode %q: %w", key, warperrors.MissingField("Mutex", "inner"))
	}
	span.SetAttributes(attribute.String("lockbox.snapshot.result", "hit"))
	return m, nil
}

// Restore replaces the value guarded by m with the snapshot under key.
// Unlike Load it keeps m's primitive, so existing holders of m observe the
// restored value.
func (s *Store[T]) Restore(ctx context.Context, key string, m *mutex.Mutex[T]) error {
	loaded, err := s.Load(ctx, key)
	if err != nil {
		return err
	}
	m.Store(loaded.Load())
	return nil
}

// Delete removes the snapshot stored under key.
func (s *Store[T]) Delete(ctx context.Context, key string) (err error) {
	ctx, span := tracer.Start(ctx, "Snapshot.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("lockbox.snapshot.key", key))
	defer func() { metrics.ObserveSnapshot("delete", err) }()
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		slog.Warn("lockbox: snapshot delete failed", "key", key, "error", err)
		span.RecordError(err)
		return err
	}
	return nil
}

// Watch subscribes to snapshots saved under key by stores configured with
// WithNotify. Each received snapshot is decoded into a fresh Mutex. The
// channel is closed when ctx is canceled or the subscription fails;
// malformed payloads are logged and dropped.
func (s *Store[T]) Watch(ctx context.Context, key string) (<-chan *mutex.Mutex[T], error) {
	ps := s.client.Subscribe(ctx, s.key(key))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		// Unblocks ReceiveMessage on cancel.
		select {
		case <-ctx.Done():
			_ = ps.Close()
		case <-done:
		}
	}()

	ch := make(chan *mutex.Mutex[T], 1)
	go func() {
		defer close(ch)
		defer close(done)
		defer ps.Close()
		for {
			msg, err := ps.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			m := new(mutex.Mutex[T])
			err = s.codec.Unmarshal([]byte(msg.Payload), m)
			if err == nil && m.Primitive() == nil {
				err = warperrors.MissingField("Mutex", "inner")
			}
			metrics.ObserveSnapshot("watch", err)
			if err != nil {
				slog.Warn("lockbox: dropping malformed snapshot", "key", key, "error", err)
				continue
			}
			select {
			case ch <- m:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
