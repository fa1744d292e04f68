package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int
		want    string
		wantErr error
	}{
		{"plain", "Wann habt ihr geöffnet?", 0, "Wann habt ihr geöffnet?", nil},
		{"keeps whitespace controls", "ja\n\tbitte\r", 0, "ja\n\tbitte\r", nil},
		{"strips ansi escape", "ja\x1b[31m", 0, "ja[31m", nil},
		{"strips null and bell", "a\x00b\x07c", 0, "abc", nil},
		{"too large", strings.Repeat("a", 11), 10, "", ErrInputTooLarge},
		{"default limit", strings.Repeat("a", DefaultMaxInputSize+1), 0, "", ErrInputTooLarge},
		{"invalid utf8", "\xff\xfe", 0, "", ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Input(tt.input, tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
