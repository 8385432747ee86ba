package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor keeps the outcome of the most recent run. It is read by the
// health server while the scheduler writes to it.
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	lastError      error
	runs           int
	failures       int
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.lastError = nil
	m.runs++
	m.mu.Unlock()

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	// Don't change health status for partial failures
	log.Printf("⚠️  PARTIAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	now := time.Now()

	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = now
	m.lastError = err
	m.runs++
	m.failures++
	m.mu.Unlock()

	log.Printf("🚨 CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)
	log.Printf("Failure occurred at: %s", now.Format("2006-01-02 15:04:05"))
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run: %s - %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("❌ Last run failed: %s - %v (%d of %d runs failed)",
		m.lastRunTime.Format("Jan 2 15:04"), m.lastError, m.failures, m.runs)
}
