package observability

import (
	"sync/atomic"
	"time"
)

// ReconcileStats keeps in-process counters for the reconciler's /stats
// endpoint. Prometheus gets the same numbers through Prom.
type ReconcileStats struct {
	runs           atomic.Uint64
	failed         atomic.Uint64
	relinked       atomic.Uint64
	deletedOrphans atomic.Uint64
	strippedIDs    atomic.Uint64

	// duration stats (nanoseconds)
	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64

	lastRun atomic.Int64
}

func NewReconcileStats() *ReconcileStats {
	return &ReconcileStats{}
}

func (m *ReconcileStats) IncRuns() {
	m.runs.Add(1)
}

func (m *ReconcileStats) IncFailed() {
	m.failed.Add(1)
}

func (m *ReconcileStats) AddFixes(relinked, deletedOrphans, strippedIDs int) {
	m.relinked.Add(uint64(relinked))
	m.deletedOrphans.Add(uint64(deletedOrphans))
	m.strippedIDs.Add(uint64(strippedIDs))
}

func (m *ReconcileStats) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)
	m.lastRun.Store(time.Now().UnixNano())

	// max update

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type ReconcileSnapshot struct {
	Runs            uint64        `json:"runs"`
	Failed          uint64        `json:"failed"`
	Relinked        uint64        `json:"relinked"`
	DeletedOrphans  uint64        `json:"deletedOrphans"`
	StrippedIDs     uint64        `json:"strippedIds"`
	AverageDuration time.Duration `json:"averageDurationNs"`
	MaxDuration     time.Duration `json:"maxDurationNs"`
	LastRun         *time.Time    `json:"lastRun,omitempty"`
}

func (m *ReconcileStats) Snapshot() ReconcileSnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()
	max := m.durationMax.Load()

	var avg time.Duration

	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	snap := ReconcileSnapshot{
		Runs:            m.runs.Load(),
		Failed:          m.failed.Load(),
		Relinked:        m.relinked.Load(),
		DeletedOrphans:  m.deletedOrphans.Load(),
		StrippedIDs:     m.strippedIDs.Load(),
		AverageDuration: avg,
		MaxDuration:     time.Duration(max),
	}

	if last := m.lastRun.Load(); last > 0 {
		t := time.Unix(0, last).UTC()
		snap.LastRun = &t
	}

	return snap
}
