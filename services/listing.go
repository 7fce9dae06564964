package services

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dpefoundation/website/models"
)

// DisplayTimeLayout is how submission times appear on the dashboard and in exports.
const DisplayTimeLayout = "1/2/2006, 3:04:05 PM"

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

const defaultSortField = "submission_time"

// ListQuery selects ordering and filtering of a dashboard table.
type ListQuery struct {
	Sort string `form:"sort" json:"sort"`
	Dir  string `form:"dir" json:"dir"`
	Q    string `form:"q" json:"q"`
}

// Normalize fills defaults. The default field sorts newest first; any other field starts ascending.
func (q ListQuery) Normalize() ListQuery {
	q.Sort = strings.TrimSpace(q.Sort)
	if q.Sort == "" {
		q.Sort = defaultSortField
	}
	q.Dir = strings.ToLower(strings.TrimSpace(q.Dir))
	if q.Dir != SortAsc && q.Dir != SortDesc {
		if q.Sort == defaultSortField {
			q.Dir = SortDesc
		} else {
			q.Dir = SortAsc
		}
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

// Toggle returns the query for clicking the header of field: same field flips direction,
// a new field starts ascending.
func (q ListQuery) Toggle(field string) ListQuery {
	cur := q.Normalize()
	next := ListQuery{Sort: field, Dir: SortAsc, Q: cur.Q}
	if cur.Sort == field && cur.Dir == SortAsc {
		next.Dir = SortDesc
	}
	return next
}

// FileRef is one stored document of a submission.
type FileRef struct {
	Role  string `json:"role"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// ScholarshipRow is a submission as shown on the dashboard.
type ScholarshipRow struct {
	ID             uint      `json:"id"`
	FullName       string    `json:"full_name"`
	Files          []FileRef `json:"files"`
	SubmissionTime time.Time `json:"submission_time"`
	Reviewed       bool      `json:"reviewed"`
	Status         string    `json:"status"`
	AdminNotes     string    `json:"admin_notes"`
}

// File returns the stored path for role.
func (r ScholarshipRow) File(role string) string {
	for _, f := range r.Files {
		if f.Role == role {
			return f.Path
		}
	}
	return ""
}

func toScholarshipRow(v *Variant, rec models.Submission) ScholarshipRow {
	base := rec.Common()
	row := ScholarshipRow{
		ID:             base.ID,
		FullName:       base.FullName,
		SubmissionTime: base.SubmissionTime,
		Reviewed:       base.Reviewed,
		Status:         models.NormalizeStatus(base.Status),
		AdminNotes:     base.AdminNotes,
		Files:          make([]FileRef, 0, len(v.Slots)),
	}
	for _, slot := range v.Slots {
		row.Files = append(row.Files, FileRef{Role: slot.Role, Label: slot.Label, Path: rec.FilePath(slot.Role)})
	}
	return row
}

type comparator[T any] func(a, b T) int

func scholarshipComparators(v *Variant) map[string]comparator[ScholarshipRow] {
	m := map[string]comparator[ScholarshipRow]{
		"id":              func(a, b ScholarshipRow) int { return cmp.Compare(a.ID, b.ID) },
		"full_name":       func(a, b ScholarshipRow) int { return strings.Compare(a.FullName, b.FullName) },
		"submission_time": func(a, b ScholarshipRow) int { return a.SubmissionTime.Compare(b.SubmissionTime) },
		"reviewed":        func(a, b ScholarshipRow) int { return compareBool(a.Reviewed, b.Reviewed) },
		"status":          func(a, b ScholarshipRow) int { return strings.Compare(a.Status, b.Status) },
		"admin_notes":     func(a, b ScholarshipRow) int { return strings.Compare(a.AdminNotes, b.AdminNotes) },
	}
	for _, slot := range v.Slots {
		role := slot.Role
		m[slot.Column] = func(a, b ScholarshipRow) int { return strings.Compare(a.File(role), b.File(role)) }
	}
	return m
}

var contactComparators = map[string]comparator[models.ContactSubmission]{
	"id":              func(a, b models.ContactSubmission) int { return cmp.Compare(a.ID, b.ID) },
	"full_name":       func(a, b models.ContactSubmission) int { return strings.Compare(a.FullName, b.FullName) },
	"email":           func(a, b models.ContactSubmission) int { return strings.Compare(a.Email, b.Email) },
	"message":         func(a, b models.ContactSubmission) int { return strings.Compare(a.Message, b.Message) },
	"submission_time": func(a, b models.ContactSubmission) int { return a.SubmissionTime.Compare(b.SubmissionTime) },
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// sortRows orders rows in place. Equal rows keep their fetch order in both directions.
func sortRows[T any](rows []T, by comparator[T], dir string) {
	slices.SortStableFunc(rows, func(a, b T) int {
		if dir == SortDesc {
			return by(b, a)
		}
		return by(a, b)
	})
}

// filterRows keeps rows where any displayed value contains q, ignoring case.
// Values are matched as the dashboard shows them, so the reviewed flag is Yes or No.
func filterRows[T any](rows []T, q string, values func(T) []string) []T {
	if q == "" {
		return rows
	}
	needle := strings.ToLower(q)
	out := rows[:0:0]
	for _, r := range rows {
		for _, v := range values(r) {
			if strings.Contains(strings.ToLower(v), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func scholarshipValues(loc *time.Location) func(ScholarshipRow) []string {
	return func(r ScholarshipRow) []string {
		vals := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.FullName,
			r.SubmissionTime.In(loc).Format(DisplayTimeLayout),
			yesNo(r.Reviewed),
			r.Status,
			r.AdminNotes,
		}
		for _, f := range r.Files {
			vals = append(vals, f.Path)
		}
		return vals
	}
}

func contactValues(loc *time.Location) func(models.ContactSubmission) []string {
	return func(c models.ContactSubmission) []string {
		return []string{
			strconv.FormatUint(uint64(c.ID), 10),
			c.FullName,
			c.Email,
			c.Message,
			c.SubmissionTime.In(loc).Format(DisplayTimeLayout),
		}
	}
}
