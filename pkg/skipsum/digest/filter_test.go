package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Excludes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter Filter
		line   string
		want   bool
	}{
		{name: "zero value keeps everything", filter: Filter{}, line: "# comment\n", want: false},
		{name: "none keeps everything", filter: None(), line: "# comment\n", want: false},
		{name: "marker at start", filter: Skip("#"), line: "# comment\n", want: true},
		{name: "marker not at start", filter: Skip("#"), line: " # comment\n", want: false},
		{name: "partial multi-byte marker", filter: Skip("//"), line: "/ x\n", want: false},
		{name: "line shorter than marker", filter: Skip("//"), line: "/", want: false},
		{name: "empty marker matches all", filter: Skip(""), line: "data\n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.filter.Excludes([]byte(tt.line)))
		})
	}
}

func TestFilter_Accessors(t *testing.T) {
	t.Parallel()

	assert.False(t, None().Active())
	assert.Empty(t, None().String())

	f := Skip("//")
	assert.True(t, f.Active())
	assert.Equal(t, "//", f.String())

	empty := Skip("")
	assert.True(t, empty.Active())
	assert.Empty(t, empty.String())
}

func TestFilter_MarkerIsCopied(t *testing.T) {
	t.Parallel()

	raw := []byte("#")
	f := SkipBytes(raw)
	raw[0] = '*'

	assert.Equal(t, "#", f.String())
}
