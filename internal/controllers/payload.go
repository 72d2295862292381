package controllers

import (
	"bytes"
	"encoding/json"
	"strconv"

	"curator/internal/models"
	"curator/internal/store"

	"gorm.io/datatypes"
)

// UpdatePayload is either a StatusChange or a DataChange.
type UpdatePayload interface {
	isUpdatePayload()
}

type StatusChange struct {
	Status models.Status
}

type DataChange struct {
	Data datatypes.JSON
}

func (StatusChange) isUpdatePayload() {}
func (DataChange) isUpdatePayload()   {}

const errNoValidUpdate = "no valid data to update"

// ParseUpdatePayload decides which update the body asks for. Exactly one of a
// non-empty "status" or a non-null "data" object must be present.
func ParseUpdatePayload(body []byte) (UpdatePayload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, validationErrorf(errNoValidUpdate)
	}

	rawStatus, hasStatus := present(fields, "status")
	rawData, hasData := present(fields, "data")

	if hasStatus && hasData {
		return nil, validationErrorf("status and data cannot be updated together")
	}

	switch {
	case hasStatus:
		var s string
		if err := json.Unmarshal(rawStatus, &s); err != nil {
			return nil, validationErrorf("status must be a string")
		}
		if s == "" {
			return nil, validationErrorf(errNoValidUpdate)
		}
		status := models.Status(s)
		if !status.Valid() {
			return nil, validationErrorf("invalid status %q", s)
		}
		return StatusChange{Status: status}, nil

	case hasData:
		trimmed := bytes.TrimSpace(rawData)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, validationErrorf("data must be a JSON object")
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			return nil, validationErrorf("data must be a JSON object")
		}
		return DataChange{Data: datatypes.JSON(compact.Bytes())}, nil
	}

	return nil, validationErrorf(errNoValidUpdate)
}

// present returns the raw value of key unless it is absent or null.
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, false
	}
	return raw, true
}

// ParseListFilter reads the status, search and limit query parameters. A limit
// that is not a non-negative integer is ignored.
func ParseListFilter(status, search, limit string) store.ListFilter {
	var capped *int
	if limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n >= 0 {
			capped = &n
		}
	}
	return store.NewListFilter(status, search, capped)
}
