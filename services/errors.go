package services

import "errors"

var (
	ErrMissingField   = errors.New("missing required field")
	ErrMissingFile    = errors.New("missing required file")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrUnknownVariant = errors.New("unknown scholarship variant")
	ErrUnknownRole    = errors.New("unknown file role")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidSort    = errors.New("invalid sort field")
	ErrNotFound       = errors.New("record not found")
	ErrFileTooLarge   = errors.New("file too large")
	ErrFileType       = errors.New("file type not allowed")
	ErrUploadFailed   = errors.New("file upload failed")
)

// FieldError names the request fields that failed validation.
type FieldError struct {
	Err    error
	Fields []string
}

func (e *FieldError) Error() string {
	msg := e.Err.Error()
	for i, f := range e.Fields {
		if i == 0 {
			msg += ": " + f
		} else {
			msg += ", " + f
		}
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.Err }
