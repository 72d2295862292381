package store

import (
	"context"

	"curator/internal/models"

	"gorm.io/datatypes"
)

// Store is the data-access surface the HTTP handlers depend on.
type Store interface {
	// EnsureSchema creates the curation_pool table and its indexes if missing.
	EnsureSchema(ctx context.Context) error
	// TableExists reports whether curation_pool exists. It fails only when the
	// connection itself is unusable.
	TableExists(ctx context.Context) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
	List(ctx context.Context, filter ListFilter) ([]models.CurationRecord, error)
	// InsertBatch inserts all records or none of them.
	InsertBatch(ctx context.Context, records []models.CurationRecord) error
	UpdateStatus(ctx context.Context, id uint, status models.Status) (int64, error)
	UpdateData(ctx context.Context, id uint, data datatypes.JSON) (int64, error)
	// SyncImageStatus copies status onto the images row sharing the record's
	// filename. It never panics or returns an error; failures are reported in
	// the result for the caller to log.
	SyncImageStatus(ctx context.Context, id uint, status models.Status) SyncResult
}

type Stats struct {
	Total     int64
	Breakdown []models.StatusCount
}

type SyncResult struct {
	// Skipped is set when the images table does not exist.
	Skipped      bool
	RowsAffected int64
	Err          error
}

// ListFilter selects records for the list endpoint. Status "all" matches every
// status; Search is a case-sensitive filename substring; a nil Limit means no cap.
type ListFilter struct {
	Status string
	Search string
	Limit  *int
}

// NewListFilter applies the list defaults: empty status means unverified and
// a negative limit is ignored.
func NewListFilter(status, search string, limit *int) ListFilter {
	if status == "" {
		status = string(models.StatusUnverified)
	}
	if limit != nil && *limit < 0 {
		limit = nil
	}
	return ListFilter{Status: status, Search: search, Limit: limit}
}
