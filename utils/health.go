package utils

import (
	"context"
	"sync"
	"time"
)

// ComponentChecker probes one backing dependency.
type ComponentChecker func(ctx context.Context) error

// HealthStatus is a snapshot of dependency health keyed by component name
// (mongodb, redis-cache, redis-oauth-state).
type HealthStatus struct {
	Healthy    bool            `json:"healthy"`
	Components map[string]bool `json:"components"`
	CheckedAt  time.Time       `json:"checked_at"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// CheckHealth probes every component once, each under its own short deadline.
func CheckHealth(ctx context.Context, checkers map[string]ComponentChecker) HealthStatus {
	status := HealthStatus{
		Healthy:    true,
		Components: make(map[string]bool, len(checkers)),
		CheckedAt:  time.Now(),
	}
	for name, check := range checkers {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		ok := check(cctx) == nil
		cancel()

		status.Components[name] = ok
		if !ok {
			status.Healthy = false
		}
	}
	return status
}

// StartHealthMonitor probes all components immediately, then keeps the stored
// snapshot current on the given interval.
func StartHealthMonitor(interval time.Duration, checkers map[string]ComponentChecker) {
	update := func() {
		status := CheckHealth(context.Background(), checkers)
		healthMu.Lock()
		currentHealth = status
		healthMu.Unlock()
	}
	update()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			update()
		}
	}()
}
