package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status is the outcome of a check or probe.
type Status string

const (
	// StatusPass indicates the check passed.
	StatusPass Status = "pass"
	// StatusFail indicates the check failed.
	StatusFail Status = "fail"
)

// ProbeKind identifies the probe a check contributes to.
type ProbeKind string

// Probe kinds.
const (
	ProbeLiveness  ProbeKind = "liveness"
	ProbeReadiness ProbeKind = "readiness"
	ProbeStartup   ProbeKind = "startup"
)

// AllProbes lists every probe kind.
var AllProbes = []ProbeKind{ProbeLiveness, ProbeReadiness, ProbeStartup}

// Check represents an individual check result.
type Check struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Pass returns a passing check.
func Pass(message string) Check {
	return Check{Status: StatusPass, Message: message}
}

// Fail returns a failing check.
func Fail(message string) Check {
	return Check{Status: StatusFail, Message: message}
}

// Passed reports whether the check passed.
func (c Check) Passed() bool {
	return c.Status == StatusPass
}

// CheckFunc performs a check.
type CheckFunc func(ctx context.Context) Check

// ProbeResponse is the aggregated result of a probe.
type ProbeResponse struct {
	Probe     ProbeKind        `json:"probe"`
	Status    Status           `json:"status"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Checker runs the checks registered for each probe kind.
type Checker struct {
	version   string
	startTime time.Time
	timeout   time.Duration
	metrics   *Metrics
	checks    map[ProbeKind]map[string]CheckFunc
	mu        sync.RWMutex
}

// CheckerOption is a functional option for configuring the Checker.
type CheckerOption func(*Checker)

// WithProbeTimeout bounds every probe run.
func WithProbeTimeout(timeout time.Duration) CheckerOption {
	return func(c *Checker) {
		c.timeout = timeout
	}
}

// WithMetrics records probe outcomes on metrics.
func WithMetrics(metrics *Metrics) CheckerOption {
	return func(c *Checker) {
		c.metrics = metrics
	}
}

// NewChecker creates a new checker.
func NewChecker(version string, opts ...CheckerOption) *Checker {
	c := &Checker{
		version:   version,
		startTime: time.Now(),
		timeout:   DefaultProbeTimeout,
		checks:    make(map[ProbeKind]map[string]CheckFunc, len(AllProbes)),
	}
	for _, kind := range AllProbes {
		c.checks[kind] = make(map[string]CheckFunc)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterCheck registers check under name for the given probe kinds, or
// for every probe kind when none are given.
func (c *Checker) RegisterCheck(name string, check CheckFunc, kinds ...ProbeKind) {
	if len(kinds) == 0 {
		kinds = AllProbes
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, kind := range kinds {
		if _, ok := c.checks[kind]; !ok {
			c.checks[kind] = make(map[string]CheckFunc)
		}
		c.checks[kind][name] = check
	}
}

// CheckNames returns the sorted names of the checks registered for kind.
func (c *Checker) CheckNames(kind ProbeKind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks[kind]))
	for name := range c.checks[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the checks of a probe concurrently. The probe passes when
// every check passes; a probe without checks passes.
func (c *Checker) Run(ctx context.Context, kind ProbeKind) ProbeResponse {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks[kind]))
	for name, fn := range c.checks[kind] {
		checks[name] = fn
	}
	c.mu.RUnlock()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	response := ProbeResponse{
		Probe:     kind,
		Status:    StatusPass,
		Version:   c.version,
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Checks:    make(map[string]Check, len(checks)),
		Timestamp: time.Now().UTC(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn CheckFunc) {
			defer wg.Done()

			start := time.Now()
			check := fn(ctx)
			if c.metrics != nil {
				c.metrics.RecordCheck(name, check.Passed(), time.Since(start))
			}

			mu.Lock()
			defer mu.Unlock()
			response.Checks[name] = check
			if !check.Passed() {
				response.Status = StatusFail
			}
		}(name, fn)
	}
	wg.Wait()

	if c.metrics != nil {
		c.metrics.RecordProbe(kind, response.Status == StatusPass)
	}

	return response
}
