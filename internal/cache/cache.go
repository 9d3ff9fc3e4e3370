// Package cache is a small process wide cache for read-heavy responses. It
// uses an in-process cache by default and can be switched to redis. Values are
// msgpack encoded in both cases, so callers always get their own copy.
package cache

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/TwiN/gocache/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// KeyPost is the key prefix for single post documents
const KeyPost = "post"

const keyPrefix = "quill"

// Key builds a cache key from the passed parts
func Key(parts ...string) string {
	return strings.Join(append([]string{keyPrefix}, parts...), ":")
}

type backend interface {
	get(key string) ([]byte, bool, error)
	set(key string, value []byte, lifetime time.Duration) error
	del(key string) error
}

var (
	mu      sync.RWMutex
	current backend = newMemoryBackend()
)

func active() backend {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func use(b backend) {
	mu.Lock()
	defer mu.Unlock()
	if closer, ok := current.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("could not close previous cache backend")
		}
	}
	current = b
}

// UseRedisCache switches the cache to a redis server
func UseRedisCache(options *redis.Options) error {
	client := redis.NewClient(options)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return errors.Wrapf(err, "could not connect to redis at %s", options.Addr)
	}
	use(&redisBackend{client: client})
	return nil
}

// UseMemoryCache switches the cache to a fresh in-process cache
func UseMemoryCache() {
	use(newMemoryBackend())
}

// Disable turns caching off; Get always misses and Set is a no-op
func Disable() {
	use(noopBackend{})
}

// Get loads the value stored at key into target. It returns false if there
// is no entry.
func Get(key string, target any) (bool, error) {
	data, found, err := active().get(key)
	if err != nil || !found {
		return false, err
	}
	if err = msgpack.Unmarshal(data, target); err != nil {
		return false, errors.Wrapf(err, "could not decode cache entry %s", key)
	}
	return true, nil
}

// Set stores value at key for lifetime
func Set(key string, value any, lifetime time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return errors.WithStack(err)
	}
	return active().set(key, data, lifetime)
}

// Delete removes the entry at key
func Delete(key string) error {
	return active().del(key)
}

// generations counts the invalidations per key. A reader takes the
// generation before loading from the source and only fills the cache if no
// invalidation happened in between.
var (
	genMu       sync.Mutex
	generations = make(map[string]uint64)
)

// Generation returns the number of invalidations of key in this process
func Generation(key string) uint64 {
	genMu.Lock()
	defer genMu.Unlock()
	return generations[key]
}

// SetIfUnchanged stores value at key unless key was invalidated since gen was
// obtained from Generation. It reports whether the value was stored.
func SetIfUnchanged(key string, gen uint64, value any, lifetime time.Duration) (bool, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return false, errors.WithStack(err)
	}
	genMu.Lock()
	defer genMu.Unlock()
	if generations[key] != gen {
		return false, nil
	}
	return true, active().set(key, data, lifetime)
}

// Invalidate removes the entry at key and rejects all pending SetIfUnchanged
// calls for it
func Invalidate(key string) error {
	genMu.Lock()
	defer genMu.Unlock()
	generations[key]++
	return active().del(key)
}

type memoryBackend struct {
	c *gocache.Cache
}

func newMemoryBackend() *memoryBackend {
	c := gocache.NewCache().WithMaxSize(10000).WithEvictionPolicy(gocache.LeastRecentlyUsed)
	if err := c.StartJanitor(); err != nil {
		log.WithError(err).Warn("could not start cache janitor")
	}
	return &memoryBackend{c: c}
}

func (m *memoryBackend) get(key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	return data, ok, nil
}

func (m *memoryBackend) set(key string, value []byte, lifetime time.Duration) error {
	m.c.SetWithTTL(key, value, lifetime)
	return nil
}

func (m *memoryBackend) del(key string) error {
	m.c.Delete(key)
	return nil
}

func (m *memoryBackend) Close() error {
	m.c.StopJanitor()
	return nil
}

type redisBackend struct {
	client *redis.Client
}

func (r *redisBackend) get(key string) ([]byte, bool, error) {
	data, err := r.client.Get(context.Background(), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.WithStack(err)
	}
	return data, true, nil
}

func (r *redisBackend) set(key string, value []byte, lifetime time.Duration) error {
	return errors.WithStack(r.client.Set(context.Background(), key, value, lifetime).Err())
}

func (r *redisBackend) del(key string) error {
	return errors.WithStack(r.client.Del(context.Background(), key).Err())
}

func (r *redisBackend) Close() error {
	return r.client.Close()
}

type noopBackend struct{}

func (noopBackend) get(string) ([]byte, bool, error)         { return nil, false, nil }
func (noopBackend) set(string, []byte, time.Duration) error { return nil }
func (noopBackend) del(string) error                        { return nil }
