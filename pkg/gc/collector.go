// Package gc implements the background garbage collector: orphaned blob
// collection every cycle, plus periodic catalog and filesystem
// maintenance. Collection failures are logged and counted, never
// propagated to the host process.
package gc

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/telemetry"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/blob"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"golang.org/x/sync/errgroup"
)

// Recorder receives collection metrics. Implemented by pkg/metrics.
type Recorder interface {
	RecordRun(phase, outcome string)
	RecordReclaimed(bytes int64)
	ObserveDuration(phase string, elapsed time.Duration)
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

func (NopRecorder) RecordRun(string, string)                {}
func (NopRecorder) RecordReclaimed(int64)                   {}
func (NopRecorder) ObserveDuration(string, time.Duration)   {}

// Collector owns the collection phases. One instance per process.
type Collector struct {
	blobs   blob.Store
	blobIdx catalog.BlobCatalog
	objects catalog.ObjectCatalog
	cfg     config.GCConfig
	metrics Recorder
	cycle   atomic.Uint64
}

// Options configures a Collector.
type Options struct {
	Blobs         blob.Store
	BlobCatalog   catalog.BlobCatalog
	ObjectCatalog catalog.ObjectCatalog
	Config        config.GCConfig

	// Metrics defaults to NopRecorder
	Metrics Recorder
}

// New builds a Collector, filling config zero values with the defaults.
func New(opts Options) *Collector {
	cfg := opts.Config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.ConcurrentBatches <= 0 {
		cfg.ConcurrentBatches = 10
	}
	if cfg.StuckUploadEvery <= 0 {
		cfg.StuckUploadEvery = 10
	}
	if cfg.StuckUploadAge <= 0 {
		cfg.StuckUploadAge = time.Hour
	}
	if cfg.TombstoneRetention <= 0 {
		cfg.TombstoneRetention = 24 * time.Hour
	}
	if cfg.FSOrphanMinAge <= 0 {
		cfg.FSOrphanMinAge = time.Hour
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NopRecorder{}
	}

	return &Collector{
		blobs:   opts.Blobs,
		blobIdx: opts.BlobCatalog,
		objects: opts.ObjectCatalog,
		cfg:     cfg,
		metrics: metrics,
	}
}

// phaseFunc runs one phase, filling ps as it goes.
type phaseFunc func(ctx context.Context, ps *PhaseStats, dryRun bool) error

// RunCycle runs one scheduled pass: the orphan scan every cycle, the
// maintenance phases every stuck_upload_every-th cycle.
func (c *Collector) RunCycle(ctx context.Context) *Stats {
	cycle := c.cycle.Add(1)
	stats := &Stats{Cycle: cycle}

	c.runPhase(ctx, stats, PhaseOrphans, false, c.collectOrphans)

	if cycle%uint64(c.cfg.StuckUploadEvery) == 0 {
		c.runMaintenance(ctx, stats, false)
	}

	logger.Debug("collection cycle finished",
		logger.Component("gc"),
		logger.GCCycle(cycle),
		logger.Reclaimed(stats.TotalReclaimed()),
		logger.Count(stats.TotalErrors()),
	)
	return stats
}

// RunFull runs every phase once, for the gc CLI command. With dryRun
// the delete-type phases count without removing; the two phases that
// have no preview query (stuck-upload reap, temp sweep) are skipped
// and marked as such.
func (c *Collector) RunFull(ctx context.Context, dryRun bool) *Stats {
	stats := &Stats{Cycle: c.cycle.Add(1), DryRun: dryRun}
	c.runPhase(ctx, stats, PhaseOrphans, dryRun, c.collectOrphans)
	c.runMaintenance(ctx, stats, dryRun)
	return stats
}

func (c *Collector) runMaintenance(ctx context.Context, stats *Stats, dryRun bool) {
	c.runPhase(ctx, stats, PhaseStuckUploads, dryRun, c.reapStuckUploads)
	c.runPhase(ctx, stats, PhaseStaleDeletes, dryRun, c.sweepStaleDeletes)
	c.runPhase(ctx, stats, PhaseTombstones, dryRun, c.purgeTombstones)
	c.runPhase(ctx, stats, PhaseTempSweep, dryRun, c.sweepTemp)
	if c.cfg.ScanFilesystem {
		c.runPhase(ctx, stats, PhaseReconcile, dryRun, c.reconcileFilesystem)
	}
}

func (c *Collector) runPhase(ctx context.Context, stats *Stats, phase string, dryRun bool, fn phaseFunc) {
	start := time.Now()
	ps := PhaseStats{Phase: phase}

	ctx, span := telemetry.StartGCSpan(ctx, phase, stats.Cycle)
	defer span.End()

	outcome := "ok"
	if err := fn(ctx, &ps, dryRun); err != nil {
		ps.Errors++
		outcome = "error"
		logger.WarnCtx(ctx, "collection phase failed",
			logger.Component("gc"),
			logger.GCPhase(phase),
			logger.GCCycle(stats.Cycle),
			logger.Err(err),
		)
	}
	ps.Duration = time.Since(start)

	c.metrics.RecordRun(phase, outcome)
	c.metrics.ObserveDuration(phase, ps.Duration)
	if !dryRun && ps.ReclaimedBytes > 0 {
		c.metrics.RecordReclaimed(ps.ReclaimedBytes)
	}

	if ps.Deleted > 0 || ps.Errors > 0 {
		logger.InfoCtx(ctx, "collection phase finished",
			logger.Component("gc"),
			logger.GCPhase(phase),
			logger.GCCycle(stats.Cycle),
			logger.Count(ps.Deleted),
			logger.Reclaimed(ps.ReclaimedBytes),
			logger.DryRun(dryRun),
		)
	}

	stats.Phases = append(stats.Phases, ps)
}

// collectOrphans drains blob rows with ref_count zero. Batches run with
// bounded parallelism; a failed or panicking item stays orphaned and is
// retried next cycle.
func (c *Collector) collectOrphans(ctx context.Context, ps *PhaseStats, dryRun bool) error {
	for {
		orphans, err := c.blobIdx.FindOrphaned(ctx, c.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(orphans) == 0 {
			return nil
		}
		ps.Scanned += len(orphans)

		if dryRun {
			for _, b := range orphans {
				ps.Deleted++
				ps.ReclaimedBytes += b.SizeBytes
			}
			// Rows are not removed in a dry run; one batch is the preview.
			return nil
		}

		var deleted, reclaimed, failures atomic.Int64
		g := errgroup.Group{}
		g.SetLimit(c.cfg.ConcurrentBatches)
		for _, b := range orphans {
			b := b
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						failures.Add(1)
						logger.ErrorCtx(ctx, "panic while collecting orphaned blob",
							logger.Component("gc"),
							logger.ContentHash(b.ContentHash),
							logger.Err(fmt.Errorf("panic: %v", r)),
						)
					}
				}()
				removed, err := c.removeOrphan(ctx, b.StorageClass, b.ContentHash)
				if err != nil {
					failures.Add(1)
					logger.WarnCtx(ctx, "failed to collect orphaned blob",
						logger.Component("gc"),
						logger.ContentHash(b.ContentHash),
						logger.Err(err),
					)
					return nil
				}
				if removed {
					deleted.Add(1)
					reclaimed.Add(b.SizeBytes)
				}
				return nil
			})
		}
		_ = g.Wait()

		ps.Deleted += int(deleted.Load())
		ps.ReclaimedBytes += reclaimed.Load()
		ps.Errors += int(failures.Load())

		// No progress means every remaining item failed; stop and let
		// the next cycle retry.
		if deleted.Load() == 0 {
			return nil
		}
	}
}

// removeOrphan drops the row first, guarded on ref_count still being
// zero, then the content file. A hash re-referenced by a dedup upload
// since the scan is left alone.
func (c *Collector) removeOrphan(ctx context.Context, class objectstore.StorageClass, hash string) (bool, error) {
	removed, err := c.blobIdx.DeleteIfUnreferenced(ctx, hash)
	if err != nil || !removed {
		return false, err
	}
	return true, c.blobs.Delete(ctx, class, hash)
}

// reapStuckUploads flips WRITING rows older than stuck_upload_age to
// DELETED in one statement.
func (c *Collector) reapStuckUploads(ctx context.Context, ps *PhaseStats, dryRun bool) error {
	if dryRun {
		ps.Skipped = true
		return nil
	}
	count, err := c.objects.CleanupStuckUploads(ctx, c.cfg.StuckUploadAge)
	if err != nil {
		return err
	}
	ps.Scanned = int(count)
	ps.Deleted = int(count)
	return nil
}

// sweepStaleDeletes finishes DELETING rows whose worker died, without a
// second ref decrement: sweeping can only over-count, and the blob
// stays subject to the orphan scan.
func (c *Collector) sweepStaleDeletes(ctx context.Context, ps *PhaseStats, dryRun bool) error {
	for {
		stale, err := c.objects.FindStaleDeleting(ctx, c.cfg.StuckUploadAge, c.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		ps.Scanned += len(stale)

		if dryRun {
			ps.Deleted += len(stale)
			return nil
		}

		progressed := 0
		for _, obj := range stale {
			if _, err := c.objects.UpdateStatus(ctx, obj.ID, objectstore.StatusDeleting, objectstore.StatusDeleted, nil); err != nil {
				ps.Errors++
				continue
			}
			ps.Deleted++
			progressed++
		}
		if progressed == 0 {
			return nil
		}
	}
}

// purgeTombstones hard-deletes DELETED rows past tombstone_retention.
func (c *Collector) purgeTombstones(ctx context.Context, ps *PhaseStats, dryRun bool) error {
	for {
		expired, err := c.objects.FindExpiredTombstones(ctx, c.cfg.TombstoneRetention, c.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ps.Scanned += len(expired)

		if dryRun {
			ps.Deleted += len(expired)
			return nil
		}

		progressed := 0
		for _, obj := range expired {
			if err := c.objects.Delete(ctx, obj.ID); err != nil {
				ps.Errors++
				continue
			}
			ps.Deleted++
			progressed++
		}
		if progressed == 0 {
			return nil
		}
	}
}

// sweepTemp removes abandoned temp files older than stuck_upload_age
// from both roots.
func (c *Collector) sweepTemp(ctx context.Context, ps *PhaseStats, dryRun bool) error {
	if dryRun {
		ps.Skipped = true
		return nil
	}
	count, err := c.blobs.SweepTemp(ctx, c.cfg.StuckUploadAge)
	ps.Scanned = count
	ps.Deleted = count
	return err
}

// reconcileFilesystem walks the content trees and removes files whose
// hash has no blob row. Gated behind scan_filesystem; the minimum-age
// check keeps in-flight uploads (file renamed, row not yet written)
// out of reach.
func (c *Collector) reconcileFilesystem(ctx context.Context, ps *PhaseStats, dryRun bool) error {
	for _, class := range []objectstore.StorageClass{objectstore.ClassHot, objectstore.ClassCold} {
		class := class
		err := c.blobs.Walk(ctx, class, func(hash string, size int64, modTime time.Time) error {
			if time.Since(modTime) < c.cfg.FSOrphanMinAge {
				return nil
			}
			ps.Scanned++

			_, err := c.blobIdx.Get(ctx, hash)
			if err == nil {
				return nil
			}
			if !objectstore.IsCode(err, objectstore.ErrCodeNotFound) {
				ps.Errors++
				return nil
			}

			if !dryRun {
				if err := c.blobs.Delete(ctx, class, hash); err != nil {
					ps.Errors++
					logger.WarnCtx(ctx, "failed to remove unindexed blob file",
						logger.Component("gc"),
						logger.ContentHash(hash),
						logger.Err(err),
					)
					return nil
				}
			}
			ps.Deleted++
			ps.ReclaimedBytes += size
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
