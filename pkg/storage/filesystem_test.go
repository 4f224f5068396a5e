package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveStreamAndOpen(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := s.SaveStream("bookings/b1/before/a.jpg", strings.NewReader("image-bytes"), 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	f, err := s.Open("bookings/b1/before/a.jpg")
	require.NoError(t, err)
	defer f.Close()
	raw, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(raw))

	require.NoError(t, s.Delete("bookings/b1/before/a.jpg"))
	require.NoError(t, s.Delete("bookings/b1/before/a.jpg"))
}

func TestLocalStorageRejectsOversizedStream(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.SaveStream("big.jpg", strings.NewReader("0123456789"), 4)
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = s.Open("big.jpg")
	require.Error(t, err)
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("../outside.txt", []byte("x"))
	require.ErrorIs(t, err, ErrInvalidPath)
	_, err = s.Open("/etc/passwd")
	require.ErrorIs(t, err, ErrInvalidPath)
}
