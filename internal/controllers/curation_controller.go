package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"curator/internal/ingest"
	"curator/internal/models"
	"curator/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CurationController struct {
	Store store.Store
	Log   *zap.Logger
	// SyncImages enables copying status changes onto the images table.
	SyncImages bool
}

type ImageResponse struct {
	ID       uint           `json:"id"`
	Filename string         `json:"filename"`
	Status   models.Status  `json:"status"`
	Data     map[string]any `json:"data"`
}

// Setup creates the curation_pool table and its indexes. Safe to call repeatedly.
func (cc *CurationController) Setup(c *gin.Context) {
	if err := cc.Store.EnsureSchema(c.Request.Context()); err != nil {
		cc.Log.Error("failed to set up schema", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "created table curation_pool and its indexes",
	})
}

// Status reports whether the table exists and, if so, its record counts.
func (cc *CurationController) Status(c *gin.Context) {
	ctx := c.Request.Context()

	exists, err := cc.Store.TableExists(ctx)
	if err != nil {
		cc.Log.Error("failed to check table", zap.Error(err))
		respondError(c, err)
		return
	}

	if !exists {
		c.JSON(http.StatusOK, gin.H{
			"status":  "missing_table",
			"message": "table curation_pool does not exist, run setup first",
		})
		return
	}

	stats, err := cc.Store.Stats(ctx)
	if err != nil {
		cc.Log.Error("failed to count records", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"table_exists":     true,
		"total_count":      stats.Total,
		"status_breakdown": stats.Breakdown,
	})
}

// ListImages returns records filtered by status and filename, newest first.
func (cc *CurationController) ListImages(c *gin.Context) {
	filter := ParseListFilter(c.Query("status"), c.Query("search"), c.Query("limit"))

	records, err := cc.Store.List(c.Request.Context(), filter)
	if err != nil {
		cc.Log.Error("failed to list records", zap.Error(err))
		respondError(c, err)
		return
	}

	images := make([]ImageResponse, 0, len(records))
	for _, record := range records {
		data, err := record.DecodeData()
		if err != nil {
			cc.Log.Error("stored data is not a JSON object", zap.Uint("id", record.ID), zap.Error(err))
			respondError(c, err)
			return
		}

		images = append(images, ImageResponse{
			ID:       record.ID,
			Filename: record.Filename,
			Status:   record.Status,
			Data:     data,
		})
	}

	c.JSON(http.StatusOK, images)
}

// Upload ingests a JSON array of items in one all-or-nothing batch.
func (cc *CurationController) Upload(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, validationErrorf("failed to read body: %v", err))
		return
	}

	records, err := ingest.ParseBatch(body)
	if err != nil {
		respondError(c, &ValidationError{Message: err.Error()})
		return
	}

	if err := cc.Store.InsertBatch(c.Request.Context(), records); err != nil {
		cc.Log.Error("failed to ingest batch", zap.Int("count", len(records)), zap.Error(err))
		respondError(c, err)
		return
	}

	cc.Log.Info("ingested batch", zap.Int("count", len(records)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("ingested %d images", len(records)),
		"count":   len(records),
	})
}

// UpdateImage applies a status or data change to the record named by the last
// path segment.
func (cc *CurationController) UpdateImage(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := imageID(c.Param("rest"))
	if err != nil {
		respondError(c, err)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, validationErrorf("failed to read body: %v", err))
		return
	}

	payload, err := ParseUpdatePayload(body)
	if err != nil {
		respondError(c, err)
		return
	}

	var updated int64
	switch p := payload.(type) {
	case StatusChange:
		updated, err = cc.Store.UpdateStatus(ctx, id, p.Status)
		if err == nil && cc.SyncImages {
			cc.logSync(id, cc.Store.SyncImageStatus(ctx, id, p.Status))
		}
	case DataChange:
		updated, err = cc.Store.UpdateData(ctx, id, p.Data)
	default:
		err = errors.New("unhandled update payload")
	}

	if err != nil {
		cc.Log.Error("failed to update record", zap.Uint("id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	if updated == 0 {
		cc.Log.Warn("update matched no record", zap.Uint("id", id))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("updated image %d", id),
	})
}

// logSync records the outcome of a status sync. Sync failures never reach the caller.
func (cc *CurationController) logSync(id uint, result store.SyncResult) {
	switch {
	case result.Err != nil:
		cc.Log.Warn("image status sync failed", zap.Uint("id", id), zap.Error(result.Err))
	case result.Skipped:
		cc.Log.Debug("images table missing, status sync skipped", zap.Uint("id", id))
	default:
		cc.Log.Debug("synced image status", zap.Uint("id", id), zap.Int64("rows", result.RowsAffected))
	}
}

// imageID takes the trailing segment of the wildcard path.
func imageID(rest string) (uint, error) {
	segment := rest[strings.LastIndex(rest, "/")+1:]
	if segment == "" {
		return 0, validationErrorf("missing image id")
	}

	id, err := strconv.ParseUint(segment, 10, 64)
	if err != nil || id == 0 {
		return 0, validationErrorf("invalid image id %q", segment)
	}
	return uint(id), nil
}
