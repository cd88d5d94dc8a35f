package sessions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Demo User", "demo-user"},
		{"  Hamna  Khalid  ", "hamna-khalid"},
		{"ALLCAPS", "allcaps"},
		{"O'Brien, Jr.", "o-brien-jr"},
		{"user42", "user42"},
		{"!!!", ""},
		{"", ""},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}
