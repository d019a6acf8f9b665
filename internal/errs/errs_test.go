package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "NOT_FOUND", MakeUpperCaseWithUnderscores("Not Found"))
}

func TestNewBadRequestError_DefaultAndCustomCode(t *testing.T) {
	err := NewBadRequestError("nope", false, nil, nil)
	assert.Equal(t, "BAD_REQUEST", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)

	code := "ARTICLE_REQUIRED"
	err = NewBadRequestError("nope", true, &code, []FieldError{{Field: "title", Error: "is required"}})
	assert.Equal(t, "ARTICLE_REQUIRED", err.Code)
	assert.True(t, err.Override)
	assert.Len(t, err.Errors, 1)
}

func TestNewInternalServerError_HidesDetail(t *testing.T) {
	err := NewInternalServerError()

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "Internal Server Error", err.Message)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", err.Code)
}

func TestHTTPError_IsMatchesAnyHTTPError(t *testing.T) {
	wrapped := fmt.Errorf("wrapped: %w", NewNotFoundError("gone", false, nil))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))
	assert.False(t, errors.Is(errors.New("boom"), &HTTPError{}))
}
