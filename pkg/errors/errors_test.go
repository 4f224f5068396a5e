package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := Wrap(errors.New("boom"), ErrStorage.Code, ErrStorage.Status, "failed to persist")
	got := FromError(wrapped)
	assert.Equal(t, "STORAGE_ERROR", got.Code)
	assert.Equal(t, "failed to persist: boom", got.Error())

	plain := FromError(errors.New("unexpected"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)

	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateSentinel(t *testing.T) {
	clone := Clone(ErrSlotUnavailable, "09:00 AM is taken")
	assert.Equal(t, "09:00 AM is taken", clone.Message)
	assert.Equal(t, "time slot is no longer available", ErrSlotUnavailable.Message)
	assert.True(t, errors.Is(clone, clone))
	assert.Nil(t, Clone(nil, "x"))
}
