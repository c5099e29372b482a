package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Apply(t *testing.T) {
	f := New()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "lowercase word",
			in:       "Well, damn. The bridge is out.",
			expected: "Well, dang. The bridge is out.",
		},
		{
			name:     "preserves title case",
			in:       "Hell awaits below.",
			expected: "Heck awaits below.",
		},
		{
			name:     "preserves upper case",
			in:       "DAMN the tide!",
			expected: "DANG the tide!",
		},
		{
			name:     "word boundary respected",
			in:       "The assassin passes by the classroom.",
			expected: "The assassin passes by the classroom.",
		},
		{
			name:     "clean text untouched",
			in:       "The rain stops. Nothing stirs.",
			expected: "The rain stops. Nothing stirs.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.Apply(tc.in))
		})
	}
}
