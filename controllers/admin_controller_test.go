package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpefoundation/website/services"
)

func TestSafeReturn(t *testing.T) {
	assert.Equal(t, "/admin", safeReturn(""))
	assert.Equal(t, "/admin", safeReturn("https://evil.example/admin"))
	assert.Equal(t, "/admin", safeReturn("//evil.example"))
	assert.Equal(t, "/admin?tab=weiss", safeReturn("/admin?tab=weiss"))
}

func TestAddParamReplacesPreviousOutcome(t *testing.T) {
	got := addParam("/admin?tab=weiss&error=boom", "saved", "1")
	assert.Equal(t, "/admin?saved=1&tab=weiss", got)
}

func TestSubmissionStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{services.ErrUnknownVariant, http.StatusNotFound},
		{&services.FieldError{Err: services.ErrMissingFile, Fields: []string{"resume"}}, http.StatusBadRequest},
		{&services.FieldError{Err: services.ErrFileType, Fields: []string{"resume"}}, http.StatusBadRequest},
		{&services.FieldError{Err: services.ErrFileTooLarge, Fields: []string{"resume"}}, http.StatusBadRequest},
		{services.ErrUploadFailed, http.StatusBadGateway},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		status, _ := submissionStatus(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
	}
}

func TestFormMessageUsesLabels(t *testing.T) {
	v, err := services.LookupVariant("lemoine")
	require.NoError(t, err)

	msg := formMessage(v, &services.FieldError{Err: services.ErrMissingFile, Fields: []string{"resume", "transcript"}})
	assert.Equal(t, "Please provide: Resume File, Transcript File.", msg)

	msg = formMessage(v, &services.FieldError{Err: services.ErrFileType, Fields: []string{"recommendation"}})
	assert.Equal(t, "Only PDF or Word documents are accepted: Recommendation File.", msg)
}
