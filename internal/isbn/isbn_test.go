package isbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "9780134685991", Normalize("978-0-13-468599-1"))
	assert.Equal(t, "054792822X", Normalize("0 547 92822 x"))
	assert.Equal(t, "", Normalize(" - "))
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"isbn13 with hyphens", "978-0-13-468599-1", "9780134685991"},
		{"isbn10 with x check", "054792822x", "054792822X"},
		{"price barcode suffix", "9781234567890 59099", "9781234567890"},
		{"979 prefix", "9791032305690", "9791032305690"},
		{"passthrough 12 chars", "123456789012", "123456789012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("too short", func(t *testing.T) {
		_, err := Extract("12345")
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("too long without isbn13 prefix", func(t *testing.T) {
		_, err := Extract("12345678901234567")
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("9780134685991"))
	assert.True(t, Valid("0-547-92822-X"))
	assert.False(t, Valid("9770134685991"))
	assert.False(t, Valid("12345"))
}
