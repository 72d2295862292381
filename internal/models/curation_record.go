package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusUnverified Status = "unverified"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// StatusAll is the list filter value that disables status filtering.
const StatusAll = "all"

func (s Status) Valid() bool {
	switch s {
	case StatusUnverified, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type CurationRecord struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	Filename string         `gorm:"type:text;not null;index:idx_curation_filename" json:"filename"`
	Data     datatypes.JSON `gorm:"type:text;not null" json:"data"`
	Status   Status         `gorm:"type:text;not null;default:unverified;index:idx_curation_status" json:"status"`
}

func (CurationRecord) TableName() string {
	return "curation_pool"
}

// DecodeData parses the stored data blob. An empty blob decodes to an empty object.
func (r CurationRecord) DecodeData() (map[string]any, error) {
	out := map[string]any{}
	if len(r.Data) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(r.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data of record %d: %w", r.ID, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}
