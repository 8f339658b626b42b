package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesCode(t *testing.T) {
	custom := ErrInvalidRecord.WithMessage("bad %s", "latitude")
	assert.Equal(t, "bad latitude", custom.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, custom.Status)
	assert.ErrorIs(t, custom, ErrInvalidRecord)
	assert.NotErrorIs(t, custom, ErrDuplicateRecord)

	wrapped := fmt.Errorf("sync: %w", ErrDuplicateSession)
	assert.ErrorIs(t, wrapped, ErrDuplicateSession)

	var ae *AppError
	assert.True(t, errors.As(wrapped, &ae))
	assert.Equal(t, CodeDuplicateSession, ae.Code)
}

func TestAppError_Constructors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").Status)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").Status)
	assert.Equal(t, http.StatusForbidden, Forbidden("x").Status)

	internal := Internal()
	assert.Equal(t, CodeInternal, internal.Code)
	assert.Equal(t, "[INTERNAL_ERROR] Internal server error", internal.Error())
}

func TestAppError_NotFoundOrForbiddenIsNotFound(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ErrNotFoundOrForbidden.Status)
}
