package telemetry

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Logger is the printf-style logger server components depend on.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapZap adapts a zap logger to the Logger interface. Messages are logged
// at info level.
func WrapZap(logger *zap.Logger) Logger {
	if logger == nil {
		return LoggerFunc(nil)
	}
	sugar := logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
	return LoggerFunc(func(format string, args ...any) {
		sugar.Info(fmt.Sprintf(format, args...))
	})
}

// Metrics exposes the counters server components update.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// Counters is an in-process Metrics implementation.
type Counters struct {
	values sync.Map
}

func (c *Counters) counter(key string) *atomic.Uint64 {
	if v, ok := c.values.Load(key); ok {
		return v.(*atomic.Uint64)
	}
	v, _ := c.values.LoadOrStore(key, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

func (c *Counters) Add(key string, delta uint64) {
	if c == nil {
		return
	}
	c.counter(key).Add(delta)
}

func (c *Counters) Store(key string, value uint64) {
	if c == nil {
		return
	}
	c.counter(key).Store(value)
}

// Snapshot copies every counter.
func (c *Counters) Snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	if c == nil {
		return out
	}
	c.values.Range(func(k, v any) bool {
		out[k.(string)] = v.(*atomic.Uint64).Load()
		return true
	})
	return out
}

// Keys lists counter names in order.
func (c *Counters) Keys() []string {
	snapshot := c.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
