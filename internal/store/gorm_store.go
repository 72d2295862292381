package store

import (
	"context"
	"fmt"

	"curator/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var curationIndexes = []string{"idx_curation_status", "idx_curation_filename"}

func (s *GormStore) EnsureSchema(ctx context.Context) error {
	m := s.db.WithContext(ctx).Migrator()

	if !m.HasTable(&models.CurationRecord{}) {
		if err := m.CreateTable(&models.CurationRecord{}); err != nil {
			return fmt.Errorf("error creating curation_pool table: %w", err)
		}
	}

	for _, name := range curationIndexes {
		if m.HasIndex(&models.CurationRecord{}, name) {
			continue
		}
		if err := m.CreateIndex(&models.CurationRecord{}, name); err != nil {
			return fmt.Errorf("error creating index %s: %w", name, err)
		}
	}

	return nil
}

func (s *GormStore) TableExists(ctx context.Context) (bool, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false, fmt.Errorf("invalid database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return false, fmt.Errorf("database unreachable: %w", err)
	}

	return s.db.WithContext(ctx).Migrator().HasTable(&models.CurationRecord{}), nil
}

func (s *GormStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Breakdown: []models.StatusCount{}}

	total, err := gorm.G[models.CurationRecord](s.db).Count(ctx, "id")
	if err != nil {
		return nil, fmt.Errorf("error counting records: %w", err)
	}
	stats.Total = total

	err = gorm.G[models.CurationRecord](s.db).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(ctx, &stats.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("error counting records by status: %w", err)
	}

	return stats, nil
}

func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]models.CurationRecord, error) {
	if filter.Limit != nil && *filter.Limit == 0 {
		return []models.CurationRecord{}, nil
	}

	records, err := s.listQuery(filter).Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	if records == nil {
		records = []models.CurationRecord{}
	}

	return records, nil
}

// listQuery builds the list query: optional exact status, optional
// case-sensitive filename substring, newest first, optional cap.
func (s *GormStore) listQuery(filter ListFilter) gorm.ChainInterface[models.CurationRecord] {
	q := gorm.G[models.CurationRecord](s.db).Order("id DESC")

	if filter.Status != models.StatusAll {
		q = q.Where("status = ?", filter.Status)
	}

	// LIKE is case-insensitive on SQLite, so match with instr/strpos instead.
	if filter.Search != "" {
		q = q.Where(containsExpr(s.db.Dialector.Name()), filter.Search)
	}

	if filter.Limit != nil {
		q = q.Limit(*filter.Limit)
	}
	return q
}

func containsExpr(dialect string) string {
	if dialect == "postgres" {
		return "strpos(filename, ?) > 0"
	}
	return "instr(filename, ?) > 0"
}

func (s *GormStore) InsertBatch(ctx context.Context, records []models.CurationRecord) error {
	if len(records) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := gorm.G[models.CurationRecord](tx).Create(ctx, &records[i]); err != nil {
				return fmt.Errorf("error inserting %s: %w", records[i].Filename, err)
			}
		}
		return nil
	})
}

func (s *GormStore) UpdateStatus(ctx context.Context, id uint, status models.Status) (int64, error) {
	rows, err := gorm.G[models.CurationRecord](s.db).Where("id = ?", id).Update(ctx, "status", status)
	if err != nil {
		return 0, fmt.Errorf("error updating status of record %d: %w", id, err)
	}
	return int64(rows), nil
}

func (s *GormStore) UpdateData(ctx context.Context, id uint, data datatypes.JSON) (int64, error) {
	rows, err := gorm.G[models.CurationRecord](s.db).Where("id = ?", id).Update(ctx, "data", data)
	if err != nil {
		return 0, fmt.Errorf("error updating data of record %d: %w", id, err)
	}
	return int64(rows), nil
}

func (s *GormStore) SyncImageStatus(ctx context.Context, id uint, status models.Status) SyncResult {
	if !s.db.WithContext(ctx).Migrator().HasTable(&models.Image{}) {
		return SyncResult{Skipped: true}
	}

	filename := s.db.WithContext(ctx).Model(&models.CurationRecord{}).Select("filename").Where("id = ?", id)
	rows, err := gorm.G[models.Image](s.db).Where("file_name = (?)", filename).Update(ctx, "status", status)
	if err != nil {
		return SyncResult{Err: fmt.Errorf("error syncing images status for record %d: %w", id, err)}
	}

	return SyncResult{RowsAffected: int64(rows)}
}
