package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

type Hooks struct {
	OnHit   func(name string)
	OnMiss  func(name string)
	OnStore func(name string)
	OnError func(name string)
}

type MemoConfig[A any, R any] struct {
	Name string
	TTL  time.Duration
	// Key derives the cache key from the call arguments. Defaults to DefaultKey.
	Key func(args A) string
	// Skip reports results that must not be cached.
	Skip  func(result R) bool
	Hooks Hooks
}

// Memo wraps fn so that calls with the same key are answered from the store until the TTL runs out.
// Store failures are logged and fall through to fn.
type Memo[A any, R any] struct {
	cfg   MemoConfig[A, R]
	store Store
	fn    func(ctx context.Context, args A) (R, error)
	sf    singleflight.Group
}

func NewMemo[A any, R any](store Store, cfg MemoConfig[A, R], fn func(ctx context.Context, args A) (R, error)) *Memo[A, R] {
	if cfg.Key == nil {
		name := cfg.Name
		cfg.Key = func(args A) string { return DefaultKey(name, args) }
	}
	return &Memo[A, R]{cfg: cfg, store: store, fn: fn}
}

// DefaultKey is the function name followed by a digest of the JSON-encoded arguments.
func DefaultKey(name string, args any) string {
	raw, err := json.Marshal(args)
	if err != nil {
		return name + ":unhashable"
	}
	sum := sha256.Sum256(raw)
	return name + ":" + hex.EncodeToString(sum[:16])
}

func (m *Memo[A, R]) Call(ctx context.Context, args A) (R, error) {
	key := m.cfg.Key(args)

	if cached, ok := m.lookup(ctx, key); ok {
		m.fire(m.cfg.Hooks.OnHit)
		return cached, nil
	}
	m.fire(m.cfg.Hooks.OnMiss)

	v, err, _ := m.sf.Do(key, func() (interface{}, error) {
		result, err := m.fn(ctx, args)
		if err != nil {
			return result, err
		}
		m.save(ctx, key, result)
		return result, nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	result, _ := v.(R)
	return result, nil
}

func (m *Memo[A, R]) lookup(ctx context.Context, key string) (R, bool) {
	var out R
	if m.store == nil {
		return out, false
	}

	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		slog.Warn("cache lookup failed", "memo", m.cfg.Name, "error", err)
		m.fire(m.cfg.Hooks.OnError)
		return out, false
	}
	if !ok {
		return out, false
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Warn("dropping undecodable cache entry", "memo", m.cfg.Name, "error", err)
		return out, false
	}
	return out, true
}

func (m *Memo[A, R]) save(ctx context.Context, key string, result R) {
	if m.store == nil || m.cfg.TTL <= 0 {
		return
	}
	if m.cfg.Skip != nil && m.cfg.Skip(result) {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil || bytes.Equal(raw, []byte("null")) {
		return
	}

	if err := m.store.Set(ctx, key, raw, m.cfg.TTL); err != nil {
		slog.Warn("cache store failed", "memo", m.cfg.Name, "error", err)
		m.fire(m.cfg.Hooks.OnError)
		return
	}
	m.fire(m.cfg.Hooks.OnStore)
}

func (m *Memo[A, R]) fire(hook func(string)) {
	if hook != nil {
		hook(m.cfg.Name)
	}
}
