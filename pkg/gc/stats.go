package gc

import "time"

// Phase names, stable for logs, metrics labels, and the CLI report.
const (
	PhaseOrphans      = "orphaned_blobs"
	PhaseStuckUploads = "stuck_uploads"
	PhaseStaleDeletes = "stale_deletes"
	PhaseTombstones   = "tombstone_purge"
	PhaseTempSweep    = "temp_sweep"
	PhaseReconcile    = "fs_reconcile"
)

// PhaseStats is the outcome of one collection phase.
type PhaseStats struct {
	Phase          string        `json:"phase"`
	Scanned        int           `json:"scanned"`
	Deleted        int           `json:"deleted"`
	ReclaimedBytes int64         `json:"reclaimed_bytes"`
	Errors         int           `json:"errors"`
	Skipped        bool          `json:"skipped,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// Stats is the outcome of one collection pass.
type Stats struct {
	Cycle  uint64       `json:"cycle"`
	DryRun bool         `json:"dry_run,omitempty"`
	Phases []PhaseStats `json:"phases"`
}

// TotalReclaimed sums reclaimed bytes over all phases.
func (s *Stats) TotalReclaimed() int64 {
	var total int64
	for _, p := range s.Phases {
		total += p.ReclaimedBytes
	}
	return total
}

// TotalErrors sums errors over all phases.
func (s *Stats) TotalErrors() int {
	var total int
	for _, p := range s.Phases {
		total += p.Errors
	}
	return total
}
