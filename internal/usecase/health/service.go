package health

import (
	"context"
	"sync"
	"time"
)

// Status is the aggregated health of the service.
type Status string

const (
	// Healthy means every dependency answered.
	Healthy Status = "ok"
	// Degraded means some dependencies failed.
	Degraded Status = "degraded"
	// Unhealthy means no dependency answered.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one dependency check.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds each dependency ping.
const DefaultTimeout = 2 * time.Second

// Report aggregates check results by dependency name.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedCheck struct {
	name   string
	pinger Pinger
}

// Service pings the search engine and the record store.
type Service struct {
	checks  []namedCheck
	timeout time.Duration
}

// New creates a Service. A nil store is not checked.
func New(engine, store Pinger) *Service {
	s := &Service{timeout: DefaultTimeout}
	s.checks = append(s.checks, namedCheck{"engine", engine})
	if store != nil {
		s.checks = append(s.checks, namedCheck{"store", store})
	}
	return s
}

// WithTimeout overrides the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check pings every dependency concurrently, each under its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.checks))

	var wg sync.WaitGroup
	for i, c := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = CheckOK
			if err := c.pinger.Ping(cctx); err != nil {
				results[i] = CheckError
			}
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.checks))}
	failed := 0
	for i, c := range s.checks {
		report.Checks[c.name] = results[i]
		if results[i] == CheckError {
			failed++
		}
	}
	switch {
	case failed == len(s.checks):
		report.Status = Unhealthy
	case failed > 0:
		report.Status = Degraded
	}
	return report
}
