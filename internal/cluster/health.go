package cluster

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
)

// HealthPath is where the consul check polls.
const HealthPath = "/health"

// CheckFunc reports an unhealthy dependency with an error.
type CheckFunc func() error

// Health aggregates named checks behind one HTTP handler.
type Health struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewHealth() *Health {
	return &Health{checks: make(map[string]CheckFunc)}
}

// AddCheck registers or replaces the check called name.
func (h *Health) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// ServeHTTP answers 200 when every check passes and 503 with the failures otherwise.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	failures := make(map[string]string)
	for _, name := range names {
		if err := h.checks[name](); err != nil {
			failures[name] = err.Error()
		}
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if len(failures) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(failures)
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
