package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "a%7Cb", want: "a|b"},
		{in: "a%7cb", want: "a|b"},
		{in: "%41%42", want: "AB"},
		{in: "a%zzb", want: "a%zzb"},
		{in: "a%7", want: "a%7"},
		{in: "a%", want: "a%"},
		{in: "%%41", want: "%A"},
		{in: "%2541", want: "%41"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, unescape(tt.in), tt.in)
	}
}
