package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/dpefoundation/website/models"
	"github.com/dpefoundation/website/utils"
)

// ContactInput is a contact form as received from the visitor.
type ContactInput struct {
	FullName string `json:"full_name" form:"full_name"`
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Message  string `json:"message" form:"message"`
}

var validate = validator.New()

// ContactService stores contact form messages.
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// Submit validates the form and inserts exactly one row with the text as given. No retry on failure.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactSubmission, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		name = strings.TrimSpace(in.Name)
	}
	email := strings.TrimSpace(in.Email)
	message := strings.TrimSpace(in.Message)

	var missing []string
	if name == "" {
		missing = append(missing, "full_name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		utils.ContactSubmissions.WithLabelValues(utils.OutcomeInvalid).Inc()
		return nil, &FieldError{Err: ErrMissingField, Fields: missing}
	}
	if err := validate.Var(email, "email"); err != nil {
		utils.ContactSubmissions.WithLabelValues(utils.OutcomeInvalid).Inc()
		return nil, &FieldError{Err: ErrInvalidEmail, Fields: []string{"email"}}
	}

	row := &models.ContactSubmission{
		FullName:       name,
		Email:          email,
		Message:        message,
		SubmissionTime: nowFunc().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		utils.ContactSubmissions.WithLabelValues(utils.OutcomeFailed).Inc()
		return nil, fmt.Errorf("insert contact submission: %w", err)
	}
	utils.ContactSubmissions.WithLabelValues(utils.OutcomeOK).Inc()
	invalidateDashboard(ctx)

	// mail clients may render the body as HTML, so the notification gets plain text only
	utils.NotifyAdmin("New contact form message from "+utils.SanitizeText(name),
		fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", utils.SanitizeText(name), email, utils.SanitizeText(message)))
	return row, nil
}
