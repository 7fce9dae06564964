package models

import (
	"time"

	"gorm.io/gorm"
)

// ContactSubmission is one message sent through the public contact form.
type ContactSubmission struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FullName       string    `gorm:"size:255;not null" json:"full_name"`
	Email          string    `gorm:"size:255;not null" json:"email"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	SubmissionTime time.Time `gorm:"index;not null" json:"submission_time"`
}

func (ContactSubmission) TableName() string { return "contact_form_submissions" }

// BeforeCreate stamps the submission time when the caller did not.
func (c *ContactSubmission) BeforeCreate(tx *gorm.DB) error {
	if c.SubmissionTime.IsZero() {
		c.SubmissionTime = time.Now().UTC()
	}
	return nil
}
