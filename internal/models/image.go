package models

// Image is a row of the externally owned images table. Only its status is
// written by this service, matched on file_name.
type Image struct {
	ID       uint   `gorm:"primaryKey"`
	FileName string `gorm:"column:file_name;type:text;not null;index"`
	Status   Status `gorm:"type:text"`
}

func (Image) TableName() string {
	return "images"
}
