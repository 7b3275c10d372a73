package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// DefaultPruneMinAge keeps photos uploaded within this window out of a prune,
// since a cover usually references its photo only after the upload finished.
const DefaultPruneMinAge = 10 * time.Minute

// Scanner walks the cover references of the catalog and cross-checks them
// against the upload registry.
type Scanner struct {
	service catalog.Service
	uploads *catalog.Uploads
	now     func() time.Time
}

// New creates a new Scanner instance.
func New(service catalog.Service, uploads *catalog.Uploads) *Scanner {
	return &Scanner{service: service, uploads: uploads, now: time.Now}
}

// ScanOptions configures the scan operation.
type ScanOptions struct {
	// Processor defines the processing logic (required unless DryRun is true)
	Processor CoverProcessor

	// DryRun if true, doesn't process covers, just reports what would be processed
	DryRun bool

	// Out receives dry-run and failure lines (default: os.Stdout)
	Out io.Writer

	// OnProgress is called after each category is processed (optional)
	OnProgress func(processed, total int64)
}

// ScanResult contains statistics about the scan operation.
type ScanResult struct {
	TotalFound     int64
	TotalProcessed int64
	TotalFailed    int64

	// FailedIDs contains "<entity>:<id>" for covers that failed processing
	FailedIDs []string
}

// Scan reads one consistent catalog map and processes every cover in map
// order. A failing cover is recorded and the scan continues.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{}

	if !opts.DryRun && opts.Processor == nil {
		return result, fmt.Errorf("processor is required when DryRun is false")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	tree, err := s.service.GetCatalogMap(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load catalog map: %w", err)
	}

	batches := make([][]CoverRef, 0, len(tree))
	for _, c := range tree {
		refs := covers(c)
		result.TotalFound += int64(len(refs))
		batches = append(batches, refs)
	}

	for _, refs := range batches {
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			if opts.DryRun {
				fmt.Fprintf(out, "[DRY-RUN] Would process: %s %s (cover=%s)\n", ref.Entity, ref.ID, ref.Cover)
				result.TotalProcessed++
				continue
			}

			if err := opts.Processor.Process(ctx, ref); err != nil {
				result.TotalFailed++
				result.FailedIDs = append(result.FailedIDs, string(ref.Entity)+":"+ref.ID)
				fmt.Fprintf(out, "[ERROR] Failed to process %s %s: %v\n", ref.Entity, ref.ID, err)
				continue
			}

			result.TotalProcessed++
		}

		if opts.OnProgress != nil {
			opts.OnProgress(result.TotalProcessed+result.TotalFailed, result.TotalFound)
		}
	}

	return result, nil
}

// ForEach processes each cover with a callback function.
func (s *Scanner) ForEach(ctx context.Context, fn func(context.Context, CoverRef) error) (*ScanResult, error) {
	return s.Scan(ctx, ScanOptions{Processor: ProcessorFunc(fn), Out: io.Discard})
}

// Dangling returns the covers whose photo is not stored.
func (s *Scanner) Dangling(ctx context.Context) ([]CoverRef, error) {
	var dangling []CoverRef
	_, err := s.ForEach(ctx, func(ctx context.Context, ref CoverRef) error {
		_, err := s.uploads.Stat(ctx, ref.PhotoName())
		if errors.Is(err, catalog.ErrNotFound) {
			dangling = append(dangling, ref)
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return dangling, nil
}

// Orphans returns the registered photos that no cover references, newest
// first. Covers are read from the catalog map, so a SeriesLesson left behind
// by a category-keyed series delete no longer counts as a reference and its
// photo is reported as orphaned.
func (s *Scanner) Orphans(ctx context.Context) ([]*catalog.Photo, error) {
	referenced := make(map[string]bool)
	_, err := s.ForEach(ctx, func(ctx context.Context, ref CoverRef) error {
		referenced[ref.PhotoName()] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	photos, err := s.uploads.List(ctx)
	if err != nil {
		return nil, err
	}
	orphans := make([]*catalog.Photo, 0)
	for _, p := range photos {
		if !referenced[p.Name] {
			orphans = append(orphans, p)
		}
	}
	return orphans, nil
}

// PruneOrphans removes orphaned photos registered at least minAge ago and
// returns the removed names. With dryRun set nothing is removed.
func (s *Scanner) PruneOrphans(ctx context.Context, dryRun bool, minAge time.Duration) ([]string, error) {
	orphans, err := s.Orphans(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := s.now().Add(-minAge)
	removed := make([]string, 0, len(orphans))
	for _, p := range orphans {
		if p.CreatedAt.After(cutoff) {
			continue
		}
		if !dryRun {
			if err := s.uploads.Remove(ctx, p.Name); err != nil && !errors.Is(err, catalog.ErrNotFound) {
				return removed, fmt.Errorf("failed to remove %s: %w", p.Name, err)
			}
		}
		removed = append(removed, p.Name)
	}
	return removed, nil
}

// ProcessorFunc adapts a function to the CoverProcessor interface.
type ProcessorFunc func(context.Context, CoverRef) error

func (f ProcessorFunc) Process(ctx context.Context, ref CoverRef) error {
	return f(ctx, ref)
}

func covers(c catalog.MapCategory) []CoverRef {
	var refs []CoverRef
	if c.Cover != "" {
		refs = append(refs, CoverRef{Entity: catalog.KindCategory, ID: c.ID, Cover: c.Cover})
	}
	for _, l := range c.Lessons {
		if l.Cover != "" {
			refs = append(refs, CoverRef{Entity: catalog.KindLesson, ID: l.ID, CategoryID: l.CategoryID, Cover: l.Cover})
		}
	}
	for _, sr := range c.Series {
		if sr.Cover != "" {
			refs = append(refs, CoverRef{Entity: catalog.KindSeries, ID: sr.ID, CategoryID: sr.CategoryID, Cover: sr.Cover})
		}
		for _, sl := range sr.SeriesLessons {
			if sl.Cover != "" {
				refs = append(refs, CoverRef{Entity: catalog.KindSeriesLesson, ID: sl.ID,
					CategoryID: sl.CategoryID, SeriesID: sl.SeriesID, Cover: sl.Cover})
			}
		}
	}
	return refs
}
