package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dpefoundation/website/models"
	"github.com/dpefoundation/website/storage"
	"github.com/dpefoundation/website/utils"
)

const dashboardCachePrefix = "dashboard:"

func invalidateDashboard(ctx context.Context) {
	utils.InvalidateByPrefix(ctx, dashboardCachePrefix)
}

// ReviewUpdate carries the admin-editable columns. Nil fields are left unchanged.
type ReviewUpdate struct {
	ID         uint    `json:"id" form:"id"`
	Reviewed   *bool   `json:"reviewed" form:"reviewed"`
	Status     *string `json:"status" form:"status" binding:"omitempty,scholarship_status"`
	AdminNotes *string `json:"admin_notes" form:"admin_notes"`
}

// BulkResult reports the outcome of one row of a bulk save.
type BulkResult struct {
	ID    uint   `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// VariantTable is one scholarship table of the dashboard overview.
type VariantTable struct {
	Variant *Variant         `json:"variant"`
	Rows    []ScholarshipRow `json:"rows"`
}

// Overview is everything the dashboard shows on first load.
type Overview struct {
	Scholarships []VariantTable             `json:"scholarships"`
	Contacts     []models.ContactSubmission `json:"contacts"`
}

// DashboardService backs the admin dashboard: listing, editing and file previews.
type DashboardService struct {
	db    *gorm.DB
	store storage.Store
	loc   *time.Location
}

func NewDashboardService(db *gorm.DB, store storage.Store, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{db: db, store: store, loc: loc}
}

// Location is the timezone used to display times.
func (s *DashboardService) Location() *time.Location { return s.loc }

// ListScholarships fetches every row of a variant, sorts it, then filters it by q.
func (s *DashboardService) ListScholarships(ctx context.Context, variant string, q ListQuery) ([]ScholarshipRow, error) {
	v, err := LookupVariant(variant)
	if err != nil {
		return nil, err
	}
	q = q.Normalize()
	by, ok := scholarshipComparators(v)[q.Sort]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, q.Sort)
	}

	key := fmt.Sprintf("%sscholarships:%s:%s:%s:%s", dashboardCachePrefix, v.Name, q.Sort, q.Dir, strings.ToLower(q.Q))
	var cached []ScholarshipRow
	if utils.CacheGetJSON(ctx, key, &cached) {
		return cached, nil
	}

	recs, err := v.ListAll(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list %s submissions: %w", v.Name, err)
	}
	rows := make([]ScholarshipRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, toScholarshipRow(v, rec))
	}
	sortRows(rows, by, q.Dir)
	rows = filterRows(rows, q.Q, scholarshipValues(s.loc))

	utils.CacheSetJSON(ctx, key, rows, 0)
	return rows, nil
}

// ListContacts fetches every contact message, sorts it, then filters it by q.
func (s *DashboardService) ListContacts(ctx context.Context, q ListQuery) ([]models.ContactSubmission, error) {
	q = q.Normalize()
	by, ok := contactComparators[q.Sort]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, q.Sort)
	}

	key := fmt.Sprintf("%scontacts:%s:%s:%s", dashboardCachePrefix, q.Sort, q.Dir, strings.ToLower(q.Q))
	var cached []models.ContactSubmission
	if utils.CacheGetJSON(ctx, key, &cached) {
		return cached, nil
	}

	var rows []models.ContactSubmission
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	sortRows(rows, by, q.Dir)
	rows = filterRows(rows, q.Q, contactValues(s.loc))

	utils.CacheSetJSON(ctx, key, rows, 0)
	return rows, nil
}

// Overview loads every table with the default ordering.
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	out := &Overview{}
	for _, v := range Variants() {
		rows, err := s.ListScholarships(ctx, v.Name, ListQuery{})
		if err != nil {
			return nil, err
		}
		out.Scholarships = append(out.Scholarships, VariantTable{Variant: v, Rows: rows})
	}
	contacts, err := s.ListContacts(ctx, ListQuery{})
	if err != nil {
		return nil, err
	}
	out.Contacts = contacts
	return out, nil
}

// UpdateReview writes the given columns of one submission immediately. Last writer wins.
func (s *DashboardService) UpdateReview(ctx context.Context, variant string, id uint, upd ReviewUpdate) (*ScholarshipRow, error) {
	v, err := LookupVariant(variant)
	if err != nil {
		return nil, err
	}
	changes, err := upd.columns()
	if err != nil {
		return nil, err
	}

	rec := v.NewRecord()
	if err := s.db.WithContext(ctx).First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s #%d", ErrNotFound, v.Name, id)
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(rec).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update %s #%d: %w", v.Name, id, err)
	}
	invalidateDashboard(ctx)

	fresh := v.NewRecord()
	if err := s.db.WithContext(ctx).First(fresh, id).Error; err != nil {
		return nil, err
	}
	row := toScholarshipRow(v, fresh)
	return &row, nil
}

// SaveAll applies each update independently and reports per-row outcomes.
func (s *DashboardService) SaveAll(ctx context.Context, variant string, updates []ReviewUpdate) ([]BulkResult, error) {
	if _, err := LookupVariant(variant); err != nil {
		return nil, err
	}
	results := make([]BulkResult, 0, len(updates))
	for _, upd := range updates {
		res := BulkResult{ID: upd.ID, OK: true}
		if _, err := s.UpdateReview(ctx, variant, upd.ID, upd); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

// FileURL resolves the public URL of one stored document.
func (s *DashboardService) FileURL(ctx context.Context, variant string, id uint, role string) (string, error) {
	v, err := LookupVariant(variant)
	if err != nil {
		return "", err
	}
	bucket, err := BucketFor(v.Name, role)
	if err != nil {
		return "", err
	}
	rec := v.NewRecord()
	if err := s.db.WithContext(ctx).First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s #%d", ErrNotFound, v.Name, id)
		}
		return "", err
	}
	path := rec.FilePath(role)
	if path == "" {
		return "", fmt.Errorf("%w: no %s file on %s #%d", ErrNotFound, role, v.Name, id)
	}
	return s.store.PublicURL(bucket, path), nil
}

func (u ReviewUpdate) columns() (map[string]interface{}, error) {
	changes := map[string]interface{}{}
	if u.Reviewed != nil {
		changes["reviewed"] = *u.Reviewed
	}
	if u.Status != nil {
		if !models.IsValidStatus(*u.Status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *u.Status)
		}
		changes["status"] = *u.Status
	}
	if u.AdminNotes != nil {
		changes["admin_notes"] = *u.AdminNotes
	}
	if len(changes) == 0 {
		return nil, &FieldError{Err: ErrMissingField, Fields: []string{"reviewed", "status", "admin_notes"}}
	}
	return changes, nil
}
