package basecamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{
			name:   "single next",
			header: `<https://3.basecampapi.com/999/projects.json?page=2>; rel="next"`,
			want:   "https://3.basecampapi.com/999/projects.json?page=2",
		},
		{
			name:   "prev and next",
			header: `<https://x/p?page=1>; rel="prev", <https://x/p?page=3>; rel="next"`,
			want:   "https://x/p?page=3",
		},
		{name: "no next", header: `<https://x/p?page=1>; rel="prev"`, want: ""},
		{name: "unquoted rel", header: `<https://x/p?page=2>; rel=next`, want: "https://x/p?page=2"},
		{name: "malformed target", header: `https://x/p?page=2; rel="next"`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextLink(tt.header))
		})
	}
}
