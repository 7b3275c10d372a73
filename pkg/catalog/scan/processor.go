package scan

import (
	"context"
	"strings"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// CoverRef is one entity whose cover field is set.
type CoverRef struct {
	Entity     catalog.EntityKind
	ID         string
	CategoryID string
	SeriesID   string
	Cover      string
}

// PhotoName is the upload name the cover points at: the last path segment of
// the cover with any query or fragment removed. Covers are free-form, so a
// cover that is a full URL to /api/uploads/<name> resolves to <name>.
func (r CoverRef) PhotoName() string {
	name := r.Cover
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// CoverProcessor processes individual cover references.
type CoverProcessor interface {
	// Process is called for each cover found during a scan.
	// Return error to mark this cover as failed (scan continues with the next one).
	Process(ctx context.Context, ref CoverRef) error
}
