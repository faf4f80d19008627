package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyFormatter_Format(t *testing.T) {
	t.Parallel()

	out := render(t, &PrettyFormatter{})

	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "NOT FOUND")
	assert.Contains(t, out, "UNREADABLE")
	assert.Contains(t, out, "is a directory")
	assert.Contains(t, out, "Malformed line in BAD")
	assert.Contains(t, out, "File not found: MISSING")

	assert.Contains(t, out, "Verified:")
	assert.Contains(t, out, "Failed:")
	assert.Contains(t, out, "Missing:")
	assert.Contains(t, out, "7 B")
}

func TestPrettyFormatter_Footer_NoMissing(t *testing.T) {
	t.Parallel()

	out := (&PrettyFormatter{}).formatFooter(Summary{Verified: 3, Bytes: 2048})
	assert.Contains(t, out, "Verified:")
	assert.Contains(t, out, "2.0 KiB")
	assert.NotContains(t, out, "Missing:")
}

func TestPadRight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OK   ", padRight("OK", 5))
	assert.Equal(t, "UNREADABLE", padRight("UNREADABLE", 4))
}
