package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	c := Cursor{
		Date:      time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC),
		ID:        "0190b1e6-7b5a-7c8e-9d0f-1a2b3c4d5e6f",
	}

	token := EncodeToken(c)
	assert.NotEmpty(t, token)

	got, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, c.Date.Equal(got.Date))
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, c.ID, got.ID)
}

func TestDecodeTokenError(t *testing.T) {
	_, err := DecodeToken("this is not base64!")
	assert.ErrorContains(t, err, "base64 decode")

	_, err = DecodeToken(base64.URLEncoding.EncodeToString([]byte("only-one-part")))
	assert.ErrorContains(t, err, "split")

	_, err = DecodeToken(base64.URLEncoding.EncodeToString([]byte("bad|2024-01-01T00:00:00Z|id")))
	assert.ErrorContains(t, err, "date parse")

	_, err = DecodeToken(base64.URLEncoding.EncodeToString([]byte("2024-01-01T00:00:00Z|2024-01-01T00:00:00Z|")))
	assert.ErrorContains(t, err, "empty id")
}
