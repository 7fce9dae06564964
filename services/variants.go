package services

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/dpefoundation/website/models"
)

// FileSlot is one document a variant requires.
type FileSlot struct {
	Role   string `json:"role"`
	Field  string `json:"field"`
	Column string `json:"column"`
	Bucket string `json:"bucket"`
	Label  string `json:"label"`
}

// Variant describes one scholarship programme.
type Variant struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Slots       []FileSlot `json:"slots"`

	newRecord func() models.Submission
	listAll   func(ctx context.Context, db *gorm.DB) ([]models.Submission, error)
}

// Table returns the variant's table name.
func (v *Variant) Table() string { return v.newRecord().TableName() }

// Slot returns the slot for role.
func (v *Variant) Slot(role string) (FileSlot, bool) {
	for _, s := range v.Slots {
		if s.Role == role {
			return s, true
		}
	}
	return FileSlot{}, false
}

// NewRecord returns an empty row of the variant's table.
func (v *Variant) NewRecord() models.Submission { return v.newRecord() }

// ListAll fetches every row of the variant's table.
func (v *Variant) ListAll(ctx context.Context, db *gorm.DB) ([]models.Submission, error) {
	return v.listAll(ctx, db)
}

func listRows[T any, PT interface {
	*T
	models.Submission
}](ctx context.Context, db *gorm.DB) ([]models.Submission, error) {
	var rows []T
	if err := db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Submission, len(rows))
	for i := range rows {
		out[i] = PT(&rows[i])
	}
	return out, nil
}

func applicationSlot(bucket string) FileSlot {
	return FileSlot{Role: models.RoleApplication, Field: "application", Column: "application_file_path", Bucket: bucket, Label: "Application File"}
}

var variants = map[string]*Variant{
	"bleakley": {
		Name:        "bleakley",
		DisplayName: "Bleakley Scholarship",
		Slots: []FileSlot{
			applicationSlot("applications"),
			{Role: models.RoleAttendance, Field: "attendance", Column: "attendance_file_path", Bucket: "proofs", Label: "Attendance File"},
			{Role: models.RoleTestCompletion, Field: "test_completion", Column: "test_completion_file_path", Bucket: "fsot", Label: "Test Completion File"},
		},
		newRecord: func() models.Submission { return &models.BleakleySubmission{} },
		listAll:   listRows[models.BleakleySubmission, *models.BleakleySubmission],
	},
	"weiss": {
		Name:        "weiss",
		DisplayName: "Weiss Scholarship",
		Slots: []FileSlot{
			applicationSlot("weiss-applications"),
			{Role: models.RoleAttendance, Field: "attendance", Column: "attendance_file_path", Bucket: "weiss-attendance-proof", Label: "Attendance File"},
			{Role: models.RoleIntern, Field: "intern_completion", Column: "intern_completion_file_path", Bucket: "weiss-intern-proof", Label: "Intern Completion File"},
		},
		newRecord: func() models.Submission { return &models.WeissSubmission{} },
		listAll:   listRows[models.WeissSubmission, *models.WeissSubmission],
	},
	"butts": {
		Name:        "butts",
		DisplayName: "Butts Scholarship",
		Slots: []FileSlot{
			applicationSlot("butts-applications"),
			{Role: models.RoleAttendance, Field: "attendance", Column: "attendance_file_path", Bucket: "butts-attendance-proof", Label: "Attendance File"},
			{Role: models.RoleRequirements, Field: "additional_requirements", Column: "additional_requirements_file_path", Bucket: "butts-requirements", Label: "Additional Requirements File"},
		},
		newRecord: func() models.Submission { return &models.ButtsSubmission{} },
		listAll:   listRows[models.ButtsSubmission, *models.ButtsSubmission],
	},
	"lemoine": {
		Name:        "lemoine",
		DisplayName: "Lemoine Scholarship",
		Slots: []FileSlot{
			applicationSlot("lemoine-applications"),
			{Role: models.RoleResume, Field: "resume", Column: "resume_file_path", Bucket: "lemoine-resumes", Label: "Resume File"},
			{Role: models.RoleTranscript, Field: "transcript", Column: "transcript_file_path", Bucket: "lemoine-transcripts", Label: "Transcript File"},
			{Role: models.RoleRecommendation, Field: "recommendation", Column: "recommendation_file_path", Bucket: "lemoine-recommendations", Label: "Recommendation File"},
		},
		newRecord: func() models.Submission { return &models.LemoineSubmission{} },
		listAll:   listRows[models.LemoineSubmission, *models.LemoineSubmission],
	},
}

// LookupVariant returns the variant registered under name.
func LookupVariant(name string) (*Variant, error) {
	v, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// VariantNames lists registered variants alphabetically.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Variants returns all variants in VariantNames order.
func Variants() []*Variant {
	out := make([]*Variant, 0, len(variants))
	for _, name := range VariantNames() {
		out = append(out, variants[name])
	}
	return out
}

// BucketFor is the fixed variant/role to bucket mapping used for uploads and previews.
func BucketFor(variant, role string) (string, error) {
	v, err := LookupVariant(variant)
	if err != nil {
		return "", err
	}
	slot, ok := v.Slot(role)
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnknownRole, variant, role)
	}
	return slot.Bucket, nil
}
