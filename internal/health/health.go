// Package health provides a registry of dependency health checks and the
// HTTP handlers that expose them. The checker mounts onto the API server
// instead of running its own listener.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds one full sweep of registered checks.
const checkTimeout = 5 * time.Second

// Status is the health endpoint response body.
type Status struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Version   string           `json:"version,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// Check is one dependency's result.
type Check struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// CheckFunc probes one dependency. It reports health and an optional detail
// message.
type CheckFunc func(ctx context.Context) (bool, string)

// Checker aggregates named dependency checks.
type Checker struct {
	version string

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates an empty Checker.
func NewChecker(version string) *Checker {
	return &Checker{
		version: version,
		checks:  make(map[string]CheckFunc),
	}
}

// Register adds a named check. Later registrations with the same name
// replace earlier ones.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run sweeps all checks and reports the aggregate.
func (c *Checker) Run(ctx context.Context) (Status, bool) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	status := Status{
		Status:    "ok",
		Checks:    make(map[string]Check, len(checks)),
		Version:   c.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	healthy := true
	for name, fn := range checks {
		ok, msg := fn(ctx)
		status.Checks[name] = Check{Healthy: ok, Message: msg}
		if !ok {
			healthy = false
		}
	}

	if !healthy {
		status.Status = "degraded"
	}
	return status, healthy
}

// HandleHealth reports the full status of every registered check.
// GET /api/health
func (c *Checker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status, healthy := c.Run(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

// HandleReady is the readiness probe: healthy checks mean ready.
// GET /ready
func (c *Checker) HandleReady(w http.ResponseWriter, r *http.Request) {
	if _, healthy := c.Run(r.Context()); !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
		return
	}
	w.Write([]byte("ready"))
}

// HandleLive is the liveness probe: the process is up.
// GET /live
func (c *Checker) HandleLive(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("alive"))
}
