package build

import (
	"sync"
	"time"
)

// Metrics tracks build performance
type Metrics struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	CacheHits        int64
	TotalDuration    time.Duration
	mutex            sync.RWMutex
}

// NewMetrics creates a zeroed metrics recorder.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record updates the counters for one build result.
func (m *Metrics) Record(result Result) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds++
	if result.Error != nil {
		m.FailedBuilds++
	} else {
		m.SuccessfulBuilds++
	}
	if result.CacheHit {
		m.CacheHits++
	}
	m.TotalDuration += result.Duration
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return Metrics{
		TotalBuilds:      m.TotalBuilds,
		SuccessfulBuilds: m.SuccessfulBuilds,
		FailedBuilds:     m.FailedBuilds,
		CacheHits:        m.CacheHits,
		TotalDuration:    m.TotalDuration,
	}
}

// AverageDuration returns the mean build duration, zero when nothing built.
func (m *Metrics) AverageDuration() time.Duration {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.TotalBuilds == 0 {
		return 0
	}
	return m.TotalDuration / time.Duration(m.TotalBuilds)
}
