package models

import (
	"time"

	"gorm.io/gorm"
)

// Review statuses an admin can assign to a scholarship submission.
const (
	StatusUnchecked       = "Submitted - Unchecked"
	StatusApprovedPaid    = "Approved - Paid"
	StatusApprovedPending = "Approved - Payment Pending"
	StatusDeniedReasoning = "Denied - Reasoning Provided"
	StatusDeniedFinal     = "Denied - Final Decision"
	StatusCommitteeReview = "Waiting for Committee Review"
	DefaultStatus         = StatusUnchecked
)

// Statuses lists every accepted status in display order.
var Statuses = []string{
	StatusUnchecked,
	StatusApprovedPaid,
	StatusApprovedPending,
	StatusDeniedReasoning,
	StatusDeniedFinal,
	StatusCommitteeReview,
}

// IsValidStatus reports whether s is one of Statuses.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// NormalizeStatus maps an empty stored status to the default.
func NormalizeStatus(s string) string {
	if s == "" {
		return DefaultStatus
	}
	return s
}

// SubmissionBase holds the columns every scholarship table shares.
type SubmissionBase struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	FullName            string    `gorm:"size:255;not null" json:"full_name"`
	ApplicationFilePath string    `gorm:"size:512" json:"application_file_path"`
	SubmissionTime      time.Time `gorm:"index;not null" json:"submission_time"`
	Reviewed            bool      `gorm:"not null;default:false" json:"reviewed"`
	Status              string    `gorm:"size:64;not null;default:'Submitted - Unchecked'" json:"status"`
	AdminNotes          string    `gorm:"type:text" json:"admin_notes"`
}

// Common exposes the shared columns.
func (b *SubmissionBase) Common() *SubmissionBase { return b }

func (b *SubmissionBase) prepare() {
	if b.SubmissionTime.IsZero() {
		b.SubmissionTime = time.Now().UTC()
	}
	b.Status = NormalizeStatus(b.Status)
}

// Submission is implemented by every per-variant scholarship row.
// File paths are addressed by slot role.
type Submission interface {
	TableName() string
	Common() *SubmissionBase
	FilePath(role string) string
	SetFilePath(role, path string)
}

// Slot roles.
const (
	RoleApplication    = "application"
	RoleAttendance     = "attendance"
	RoleTestCompletion = "test_completion"
	RoleIntern         = "intern"
	RoleRequirements   = "requirements"
	RoleResume         = "resume"
	RoleTranscript     = "transcript"
	RoleRecommendation = "recommendation"
)

// BleakleySubmission requires attendance proof and FSOT test completion.
type BleakleySubmission struct {
	SubmissionBase
	AttendanceFilePath     string `gorm:"size:512" json:"attendance_file_path"`
	TestCompletionFilePath string `gorm:"size:512" json:"test_completion_file_path"`
}

func (BleakleySubmission) TableName() string { return "bleakley_scholarship_submissions" }

func (s *BleakleySubmission) BeforeCreate(tx *gorm.DB) error { s.prepare(); return nil }

func (s *BleakleySubmission) FilePath(role string) string {
	switch role {
	case RoleApplication:
		return s.ApplicationFilePath
	case RoleAttendance:
		return s.AttendanceFilePath
	case RoleTestCompletion:
		return s.TestCompletionFilePath
	}
	return ""
}

func (s *BleakleySubmission) SetFilePath(role, path string) {
	switch role {
	case RoleApplication:
		s.ApplicationFilePath = path
	case RoleAttendance:
		s.AttendanceFilePath = path
	case RoleTestCompletion:
		s.TestCompletionFilePath = path
	}
}

// WeissSubmission requires attendance proof and internship completion.
type WeissSubmission struct {
	SubmissionBase
	AttendanceFilePath       string `gorm:"size:512" json:"attendance_file_path"`
	InternCompletionFilePath string `gorm:"size:512" json:"intern_completion_file_path"`
}

func (WeissSubmission) TableName() string { return "weiss_scholarship_submissions" }

func (s *WeissSubmission) BeforeCreate(tx *gorm.DB) error { s.prepare(); return nil }

func (s *WeissSubmission) FilePath(role string) string {
	switch role {
	case RoleApplication:
		return s.ApplicationFilePath
	case RoleAttendance:
		return s.AttendanceFilePath
	case RoleIntern:
		return s.InternCompletionFilePath
	}
	return ""
}

func (s *WeissSubmission) SetFilePath(role, path string) {
	switch role {
	case RoleApplication:
		s.ApplicationFilePath = path
	case RoleAttendance:
		s.AttendanceFilePath = path
	case RoleIntern:
		s.InternCompletionFilePath = path
	}
}

// ButtsSubmission requires attendance proof and additional requirements.
type ButtsSubmission struct {
	SubmissionBase
	AttendanceFilePath             string `gorm:"size:512" json:"attendance_file_path"`
	AdditionalRequirementsFilePath string `gorm:"size:512" json:"additional_requirements_file_path"`
}

func (ButtsSubmission) TableName() string { return "butts_scholarship_submissions" }

func (s *ButtsSubmission) BeforeCreate(tx *gorm.DB) error { s.prepare(); return nil }

func (s *ButtsSubmission) FilePath(role string) string {
	switch role {
	case RoleApplication:
		return s.ApplicationFilePath
	case RoleAttendance:
		return s.AttendanceFilePath
	case RoleRequirements:
		return s.AdditionalRequirementsFilePath
	}
	return ""
}

func (s *ButtsSubmission) SetFilePath(role, path string) {
	switch role {
	case RoleApplication:
		s.ApplicationFilePath = path
	case RoleAttendance:
		s.AttendanceFilePath = path
	case RoleRequirements:
		s.AdditionalRequirementsFilePath = path
	}
}

// LemoineSubmission requires a resume, transcript and recommendation letter.
type LemoineSubmission struct {
	SubmissionBase
	ResumeFilePath         string `gorm:"size:512" json:"resume_file_path"`
	TranscriptFilePath     string `gorm:"size:512" json:"transcript_file_path"`
	RecommendationFilePath string `gorm:"size:512" json:"recommendation_file_path"`
}

func (LemoineSubmission) TableName() string { return "lemoine_scholarship_submissions" }

func (s *LemoineSubmission) BeforeCreate(tx *gorm.DB) error { s.prepare(); return nil }

func (s *LemoineSubmission) FilePath(role string) string {
	switch role {
	case RoleApplication:
		return s.ApplicationFilePath
	case RoleResume:
		return s.ResumeFilePath
	case RoleTranscript:
		return s.TranscriptFilePath
	case RoleRecommendation:
		return s.RecommendationFilePath
	}
	return ""
}

func (s *LemoineSubmission) SetFilePath(role, path string) {
	switch role {
	case RoleApplication:
		s.ApplicationFilePath = path
	case RoleResume:
		s.ResumeFilePath = path
	case RoleTranscript:
		s.TranscriptFilePath = path
	case RoleRecommendation:
		s.RecommendationFilePath = path
	}
}

// All returns one zero value of every model, in migration order.
func All() []interface{} {
	return []interface{}{
		&ContactSubmission{},
		&BleakleySubmission{},
		&WeissSubmission{},
		&ButtsSubmission{},
		&LemoineSubmission{},
		&Heartbeat{},
		&PageView{},
		&UploadedFile{},
	}
}
