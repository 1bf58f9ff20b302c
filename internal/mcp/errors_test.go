package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	iperrors "github.com/ipassist/retrieval-core/internal/errors"
)

func TestMapErrorNil(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapErrorCorpusAbsent(t *testing.T) {
	err := iperrors.New(iperrors.ErrCodeCorpusAbsent, "no corpus loaded", nil)
	mapped := MapError(err)
	assert.Equal(t, ErrCodeCorpusAbsent, mapped.Code)
}

func TestMapErrorDependency(t *testing.T) {
	err := iperrors.DependencyError(iperrors.ErrCodeRerankerUnavailable, "reranker unavailable", nil)
	mapped := MapError(err)
	assert.Equal(t, ErrCodeDependency, mapped.Code)
}

func TestMapErrorValidation(t *testing.T) {
	err := iperrors.ValidationError(iperrors.ErrCodeQueryEmpty, "query is empty", nil)
	mapped := MapError(err)
	assert.Equal(t, ErrCodeInvalidParams, mapped.Code)
}

func TestMapErrorContextCanceled(t *testing.T) {
	mapped := MapError(context.Canceled)
	assert.Equal(t, ErrCodeTimeout, mapped.Code)
}

func TestMapErrorUnknownDefaultsToInternal(t *testing.T) {
	mapped := MapError(assert.AnError)
	assert.Equal(t, ErrCodeInternalError, mapped.Code)
}

func TestNewInvalidParamsError(t *testing.T) {
	err := NewInvalidParamsError("query is required")
	assert.Equal(t, ErrCodeInvalidParams, err.Code)
	assert.Contains(t, err.Error(), "query is required")
}
