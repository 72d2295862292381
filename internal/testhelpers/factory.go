package testhelpers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"curator/internal/config"
	"curator/internal/db"
	"curator/internal/models"

	"github.com/google/uuid"
	g "github.com/onsi/gomega"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewTestDB returns an empty database. It uses TEST_DATABASE_URL (Postgres,
// cleaned with CleanupDB) when set, otherwise a private in-memory SQLite db.
func NewTestDB() *gorm.DB {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		dbConn, err := db.InitDB(config.DriverPostgres, dsn, false)
		g.Expect(err).NotTo(g.HaveOccurred())
		CleanupDB(dbConn)
		return dbConn
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dbConn, err := db.InitDB(config.DriverSQLite, dsn, false)
	g.Expect(err).NotTo(g.HaveOccurred())

	// one connection keeps the in-memory database alive and serializes writers
	sqlDB, err := dbConn.DB()
	g.Expect(err).NotTo(g.HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return dbConn
}

// CleanupDB drops every table so each spec starts before setup.
func CleanupDB(dbConn *gorm.DB) {
	tables, err := dbConn.Migrator().GetTables()
	g.Expect(err).NotTo(g.HaveOccurred())

	for _, table := range tables {
		// sqlite_sequence and friends belong to SQLite and cannot be dropped
		if table == "spatial_ref_sys" || table == "schema_migrations" || strings.HasPrefix(table, "sqlite_") {
			continue
		}

		err := dbConn.Migrator().DropTable(table)
		g.Expect(err).NotTo(g.HaveOccurred(), "Failed to drop table: "+table)
	}
}

// CreateRecord inserts a curation record directly, bypassing the API.
func CreateRecord(dbConn *gorm.DB, filename string, status models.Status, data string) *models.CurationRecord {
	record := &models.CurationRecord{
		Filename: filename,
		Status:   status,
		Data:     datatypes.JSON(data),
	}

	result := gorm.WithResult()
	g.Expect(gorm.G[models.CurationRecord](dbConn, result).Create(context.Background(), record)).To(g.Succeed())
	g.Expect(result.RowsAffected).To(g.Equal(int64(1)))
	return record
}

// CreateImage creates the images table if needed and inserts one row.
func CreateImage(dbConn *gorm.DB, fileName string, status models.Status) *models.Image {
	g.Expect(dbConn.AutoMigrate(&models.Image{})).To(g.Succeed())

	image := &models.Image{FileName: fileName, Status: status}
	g.Expect(gorm.G[models.Image](dbConn).Create(context.Background(), image)).To(g.Succeed())
	return image
}
