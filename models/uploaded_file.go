package models

import "time"

// UploadedFile is the ledger entry for an object written to storage during a submission.
// Rows that never get attached to a submission are removed by the orphan sweeper after ExpireAt.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Bucket    string    `gorm:"size:128;not null;index:idx_uploaded_bucket_path" json:"bucket"`
	Path      string    `gorm:"size:512;not null;index:idx_uploaded_bucket_path" json:"path"`
	Variant   string    `gorm:"size:32" json:"variant"`
	Attached  bool      `gorm:"not null;default:false;index" json:"attached"`
	ExpireAt  time.Time `gorm:"index" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
