package timing

import (
	"context"
	"sort"
	"sync"
	"time"
)

type contextKey struct{}

// Observer is notified of every completed measurement.
type Observer func(operation string, duration time.Duration)

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

type Tracker struct {
	timings  map[string][]time.Duration
	mu       sync.RWMutex
	observer Observer
	enabled  bool
}

func NewTracker(observer Observer) *Tracker {
	return &Tracker{
		timings:  make(map[string][]time.Duration),
		observer: observer,
		enabled:  true,
	}
}

func (tt *Tracker) isEnabled() bool {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return tt.enabled
}

func (tt *Tracker) StartTiming(operation string) context.Context {
	if !tt.isEnabled() {
		return context.Background()
	}

	return context.WithValue(context.Background(), contextKey{}, TimingInfo{
		Operation: operation,
		StartTime: time.Now(),
	})
}

func (tt *Tracker) EndTiming(ctx context.Context) {
	if !tt.isEnabled() {
		return
	}

	timingInfo, ok := ctx.Value(contextKey{}).(TimingInfo)
	if !ok {
		return
	}

	duration := time.Since(timingInfo.StartTime)

	tt.mu.Lock()
	tt.timings[timingInfo.Operation] = append(tt.timings[timingInfo.Operation], duration)
	tt.mu.Unlock()

	if tt.observer != nil {
		tt.observer(timingInfo.Operation, duration)
	}
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAllTimings() map[string][]time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	result := make(map[string][]time.Duration)
	for operation, timings := range tt.timings {
		result[operation] = make([]time.Duration, len(timings))
		copy(result[operation], timings)
	}
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

// Operations lists every operation with at least one measurement, sorted.
func (tt *Tracker) Operations() []string {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	ops := make([]string, 0, len(tt.timings))
	for op := range tt.timings {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
	} else {
		delete(tt.timings, operation)
	}
}
