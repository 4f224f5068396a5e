package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("booking-1", "bookings/booking-1/before/photo.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	obj, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "booking-1", obj.OwnerID)
	require.Equal(t, "bookings/booking-1/before/photo.jpg", obj.Path)
	require.WithinDuration(t, expiresAt, obj.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("booking-1", "bookings/booking-1/after/photo.jpg")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = signer.Parse(token, false)
	require.ErrorIs(t, err, ErrTokenExpired)

	obj, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "booking-1", obj.OwnerID)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("booking-1", "bookings/booking-1/before/photo.jpg")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "booking-2"
	_, err = signer.Parse(strings.Join(parts, "."), false)
	require.ErrorIs(t, err, ErrInvalidToken)

	other := NewSignedURLSigner("other", time.Hour)
	_, err = other.Parse(token, false)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = signer.Generate("booking.1", "x.jpg")
	require.Error(t, err)
}
