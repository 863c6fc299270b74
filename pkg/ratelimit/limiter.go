package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter names for the external services the pipeline calls
const (
	LimiterAnthropic = "anthropic"
	LimiterSheets    = "sheets"
	LimiterRSS       = "rss"
)

// ErrUnknownLimiter is returned when no limiter is registered under a name
var ErrUnknownLimiter = errors.New("unknown limiter")

// MultiLimiter holds one token bucket per external service
type MultiLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewMultiLimiter creates an empty multi-limiter
func NewMultiLimiter() *MultiLimiter {
	return &MultiLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// AddLimiter registers (or replaces) the bucket for a service.
// perMinute is the sustained rate, burst the bucket size.
func (m *MultiLimiter) AddLimiter(name string, perMinute float64, burst int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[name] = rate.NewLimiter(rate.Limit(perMinute/60), burst)
}

func (m *MultiLimiter) get(name string) (*rate.Limiter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limiter, ok := m.limiters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLimiter, name)
	}
	return limiter, nil
}

// Wait blocks until the named bucket has a token or ctx is done
func (m *MultiLimiter) Wait(ctx context.Context, name string) error {
	limiter, err := m.get(name)
	if err != nil {
		return err
	}
	return limiter.Wait(ctx)
}

// Allow takes a token without blocking. Unknown names are never allowed.
func (m *MultiLimiter) Allow(name string) bool {
	limiter, err := m.get(name)
	if err != nil {
		return false
	}
	return limiter.Allow()
}

// Rates configures the service limiters, in requests per minute
type Rates struct {
	AnthropicPerMinute float64
	SheetsPerMinute    float64
	RSSPerMinute       float64
}

// DefaultRates keeps batch generation inside Anthropic tier limits and under
// the Sheets per-user quota of 60 requests per minute.
func DefaultRates() Rates {
	return Rates{
		AnthropicPerMinute: 10,
		SheetsPerMinute:    60,
		RSSPerMinute:       60,
	}
}

// NewDefaultLimiter creates a limiter with DefaultRates
func NewDefaultLimiter() *MultiLimiter {
	return NewLimiter(DefaultRates())
}

// NewLimiter creates the service limiters from r.
// Non-positive rates fall back to the defaults.
func NewLimiter(r Rates) *MultiLimiter {
	def := DefaultRates()
	m := NewMultiLimiter()
	m.AddLimiter(LimiterAnthropic, orDefault(r.AnthropicPerMinute, def.AnthropicPerMinute), 2)
	m.AddLimiter(LimiterSheets, orDefault(r.SheetsPerMinute, def.SheetsPerMinute), 10)
	m.AddLimiter(LimiterRSS, orDefault(r.RSSPerMinute, def.RSSPerMinute), 10)
	return m
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
