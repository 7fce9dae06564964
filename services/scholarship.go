package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/models"
	"github.com/dpefoundation/website/storage"
	"github.com/dpefoundation/website/utils"
)

var allowedDocumentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// UploadFile is one document attached to an application.
type UploadFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// ApplicationInput is a scholarship application as received from the applicant.
// Files are keyed by the slot's form field name.
type ApplicationInput struct {
	FullName string
	Files    map[string]*UploadFile
}

// ScholarshipService validates applications, stores their documents and inserts the submission row.
type ScholarshipService struct {
	db       *gorm.DB
	store    storage.Store
	maxBytes int64
	grace    time.Duration
}

func NewScholarshipService(db *gorm.DB, store storage.Store, cfg config.AppConfig) *ScholarshipService {
	maxMB := cfg.UploadMaxMB
	if maxMB <= 0 {
		maxMB = 10
	}
	grace := cfg.OrphanGrace
	if grace <= 0 {
		grace = time.Hour
	}
	return &ScholarshipService{db: db, store: store, maxBytes: int64(maxMB) << 20, grace: grace}
}

// Validate checks the whole application without touching storage.
func (s *ScholarshipService) Validate(variant string, in ApplicationInput) (*Variant, error) {
	v, err := LookupVariant(variant)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return v, &FieldError{Err: ErrMissingField, Fields: []string{"full_name"}}
	}

	var missing, badType, tooLarge []string
	for _, slot := range v.Slots {
		f := in.Files[slot.Field]
		if f == nil || f.Open == nil {
			missing = append(missing, slot.Field)
			continue
		}
		if _, ok := allowedDocumentTypes[strings.ToLower(filepath.Ext(f.Filename))]; !ok {
			badType = append(badType, slot.Field)
		}
		if f.Size > s.maxBytes {
			tooLarge = append(tooLarge, slot.Field)
		}
	}
	switch {
	case len(missing) > 0:
		return v, &FieldError{Err: ErrMissingFile, Fields: missing}
	case len(badType) > 0:
		return v, &FieldError{Err: ErrFileType, Fields: badType}
	case len(tooLarge) > 0:
		return v, &FieldError{Err: ErrFileTooLarge, Fields: tooLarge}
	}
	return v, nil
}

// Submit uploads every document in slot order, then inserts one row referencing them.
// Objects already written are removed when a later step fails.
func (s *ScholarshipService) Submit(ctx context.Context, variant string, in ApplicationInput) (models.Submission, error) {
	v, err := s.Validate(variant, in)
	if err != nil {
		if v != nil {
			utils.ScholarshipSubmissions.WithLabelValues(v.Name, utils.OutcomeInvalid).Inc()
		}
		return nil, err
	}

	now := nowFunc().UTC()
	rec := v.NewRecord()
	var ledger []models.UploadedFile

	for _, slot := range v.Slots {
		entry, err := s.upload(ctx, v, slot, in.Files[slot.Field], now)
		if entry != nil {
			ledger = append(ledger, *entry)
		}
		if err != nil {
			utils.ScholarshipSubmissions.WithLabelValues(v.Name, utils.OutcomeFailed).Inc()
			s.compensate(ledger)
			return nil, err
		}
		rec.SetFilePath(slot.Role, entry.Path)
	}

	base := rec.Common()
	base.FullName = strings.TrimSpace(in.FullName)
	base.SubmissionTime = now
	base.Status = models.DefaultStatus

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		ids := ledgerIDs(ledger)
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&models.UploadedFile{}).Where("id IN ?", ids).Update("attached", true).Error
	})
	if err != nil {
		utils.ScholarshipSubmissions.WithLabelValues(v.Name, utils.OutcomeFailed).Inc()
		s.compensate(ledger)
		return nil, fmt.Errorf("insert %s submission: %w", v.Name, err)
	}

	utils.ScholarshipSubmissions.WithLabelValues(v.Name, utils.OutcomeOK).Inc()
	invalidateDashboard(ctx)
	utils.NotifyAdmin(fmt.Sprintf("New %s application from %s", v.DisplayName, base.FullName),
		fmt.Sprintf("%s submitted an application for the %s at %s.\n", base.FullName, v.DisplayName, now.Format(time.RFC1123)))
	return rec, nil
}

// upload records the object in the ledger before writing it so a crash leaves a trace for the sweeper.
func (s *ScholarshipService) upload(ctx context.Context, v *Variant, slot FileSlot, f *UploadFile, now time.Time) (*models.UploadedFile, error) {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	entry := &models.UploadedFile{
		Bucket:   slot.Bucket,
		Path:     storage.ObjectName(f.Filename),
		Variant:  v.Name,
		ExpireAt: now.Add(s.grace),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		utils.Sugar.Warnf("upload ledger insert failed bucket=%s path=%s err=%v", entry.Bucket, entry.Path, err)
	}

	body, err := f.Open()
	if err != nil {
		utils.Uploads.WithLabelValues(slot.Bucket, utils.OutcomeFailed).Inc()
		return entry, fmt.Errorf("%w: %s: %v", ErrUploadFailed, slot.Field, err)
	}
	defer body.Close()

	if err := s.store.Upload(ctx, slot.Bucket, entry.Path, body, f.Size, allowedDocumentTypes[ext]); err != nil {
		utils.Uploads.WithLabelValues(slot.Bucket, utils.OutcomeFailed).Inc()
		utils.Sugar.Errorw("document upload failed", "variant", v.Name, "bucket", slot.Bucket, "path", entry.Path, "error", err)
		return entry, fmt.Errorf("%w: %s: %v", ErrUploadFailed, slot.Field, err)
	}
	utils.Uploads.WithLabelValues(slot.Bucket, utils.OutcomeOK).Inc()
	return entry, nil
}

// compensate removes objects written for a failed submission. What cannot be removed
// stays in the ledger and is picked up by the orphan sweeper.
func (s *ScholarshipService) compensate(ledger []models.UploadedFile) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, entry := range ledger {
		if err := s.store.Remove(ctx, entry.Bucket, entry.Path); err != nil {
			utils.Sugar.Warnf("compensating remove failed bucket=%s path=%s err=%v", entry.Bucket, entry.Path, err)
			continue
		}
		if entry.ID != 0 {
			if err := s.db.WithContext(ctx).Delete(&models.UploadedFile{}, entry.ID).Error; err != nil {
				utils.Sugar.Warnf("upload ledger delete failed id=%d err=%v", entry.ID, err)
			}
		}
	}
}

func ledgerIDs(ledger []models.UploadedFile) []uint {
	ids := make([]uint, 0, len(ledger))
	for _, e := range ledger {
		if e.ID != 0 {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
