package health

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Aggregator 并发执行所有检查项
type Aggregator struct {
	timeout  time.Duration
	mu       sync.RWMutex
	checkers []Checker
	metadata map[string]interface{}
}

// NewAggregator timeout 为整轮检查的超时（默认 5s）
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		timeout:  timeout,
		metadata: make(map[string]interface{}),
	}
}

// Register 注册检查项
func (a *Aggregator) Register(checkers ...Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, checkers...)
}

// SetMetadata 附加到每次结果的元数据
func (a *Aggregator) SetMetadata(key string, value interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// Check 执行所有检查
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checkers := append([]Checker(nil), a.checkers...)
	metadata := make(map[string]interface{}, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = checkOne(ctx, c)
		}(i, c)
	}
	wg.Wait()

	resp := &Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult, len(results)),
		Metadata:  metadata,
	}
	for _, r := range results {
		resp.Checks[r.Name] = r
		resp.Status = worst(resp.Status, r.Status)
	}
	resp.Duration = time.Since(start)
	return resp
}

func checkOne(ctx context.Context, c Checker) CheckResult {
	start := time.Now()
	err := c.Check(ctx)

	result := CheckResult{
		Name:      c.Name(),
		Status:    StatusHealthy,
		Timestamp: start,
		Duration:  time.Since(start),
	}
	switch {
	case err == nil:
	case errors.Is(err, ErrDegraded):
		result.Status = StatusDegraded
		result.Error = err.Error()
	default:
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

func worst(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
