package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahsinn/campus-found/backend/internal/apperr"
)

func TestConflictMatchesSentinel(t *testing.T) {
	err := apperr.Conflict("Another claim for this listing is already under review")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Another claim for this listing is already under review", err.Error())
}

func TestConflictReasonSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("submit claim: %w", apperr.Conflict("You already have a pending claim for this listing"))

	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "You already have a pending claim for this listing", conflict.Reason)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestEmptyReasonFallsBackToSentinelText(t *testing.T) {
	assert.Equal(t, apperr.ErrConflict.Error(), apperr.Conflict("").Error())
}
