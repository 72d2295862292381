// Package ingest turns an uploaded JSON array into curation records.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"curator/internal/models"

	"gorm.io/datatypes"
)

var (
	ErrNotArray    = errors.New("input must be an array")
	ErrInvalidJSON = errors.New("invalid JSON")
)

// ItemError reports an array element that cannot become a record.
type ItemError struct {
	Index  int
	Reason string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Reason)
}

// ParseBatch validates body as a JSON array and builds one unverified record per
// element. The filename is new_filename when set, else original_filename; the
// element itself, compacted, becomes the data blob. Every error it returns is a
// client input error.
func ParseBatch(body []byte) ([]models.CurationRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, ErrInvalidJSON
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	records := make([]models.CurationRecord, 0, len(items))
	for i, item := range items {
		record, err := parseItem(item)
		if err != nil {
			return nil, &ItemError{Index: i, Reason: err.Error()}
		}
		records = append(records, record)
	}

	return records, nil
}

func parseItem(item json.RawMessage) (models.CurationRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return models.CurationRecord{}, errors.New("must be an object")
	}

	filename, err := filenameField(fields, "new_filename")
	if err != nil {
		return models.CurationRecord{}, err
	}
	if filename == "" {
		if filename, err = filenameField(fields, "original_filename"); err != nil {
			return models.CurationRecord{}, err
		}
	}
	if filename == "" {
		return models.CurationRecord{}, errors.New("missing new_filename or original_filename")
	}

	var data bytes.Buffer
	if err := json.Compact(&data, item); err != nil {
		return models.CurationRecord{}, err
	}

	return models.CurationRecord{
		Filename: filename,
		Data:     datatypes.JSON(data.Bytes()),
		Status:   models.StatusUnverified,
	}, nil
}

// filenameField reads fields[key] as a filename. Scalars are taken as their
// text; missing, null, false, zero and "" count as unset.
func filenameField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}

	var value any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}

	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if !v {
			return "", nil
		}
		return "true", nil
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return "", nil
		}
		return v.String(), nil
	default:
		return "", fmt.Errorf("%s must be a string", key)
	}
}
