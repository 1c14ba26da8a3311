package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		valid bool
	}{
		{"leading zero", "081234567890", "6281234567890", true},
		{"already prefixed", "6281234567890", "6281234567890", true},
		{"formatted", "+62 812-3456-7890", "6281234567890", true},
		{"too short", "123", "123", false},
		{"short after rewrite", "0812345", "62812345", false},
		{"foreign prefix", "4420123456789", "4420123456789", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestDeliverable(t *testing.T) {
	_, ok := Deliverable("   ")
	assert.False(t, ok)

	got, ok := Deliverable("0812 3456 7890")
	assert.True(t, ok)
	assert.Equal(t, "6281234567890", got)
}
