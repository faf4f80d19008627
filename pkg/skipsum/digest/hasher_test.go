package digest

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	content    = "abcdef\n"
	contentHex = "ae0666f161fed1a5dde998bbd0e140550d2da0db27db1d0e31e370f2bd366a57"
	emptyHex   = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	starComment0  = "**** this is a comment\n"
	starComment1  = "* this is a comment #2\n"
	slashComment2 = "// this is a comment with //\n"
)

func TestHasher_Sum_KnownVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		filter Filter
	}{
		{name: "no filter", input: content, filter: None()},
		{name: "filter without comments", input: content, filter: Skip("*")},
		{name: "leading comment", input: starComment0 + content, filter: Skip("*")},
		{name: "surrounding comments", input: starComment0 + content + starComment1, filter: Skip("*")},
		{name: "multi-byte marker", input: slashComment2 + content + slashComment2, filter: Skip("//")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sum, err := New().Sum(strings.NewReader(tt.input), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, contentHex, sum.Hex())
			assert.Equal(t, "sha256:"+contentHex, sum.Digest.String())
			assert.Len(t, sum.Hex(), HexLength)
		})
	}
}

func TestHasher_Sum_EmptyStream(t *testing.T) {
	t.Parallel()

	sum, err := New().Sum(strings.NewReader(""), None())
	require.NoError(t, err)
	assert.Equal(t, emptyHex, sum.Hex())
	assert.Zero(t, sum.Bytes)
}

func TestHasher_Sum_Deterministic(t *testing.T) {
	t.Parallel()

	input := starComment0 + content + "tail without newline"
	h := New()

	first, err := h.Sum(strings.NewReader(input), Skip("*"))
	require.NoError(t, err)
	second, err := h.Sum(strings.NewReader(input), Skip("*"))
	require.NoError(t, err)

	assert.Equal(t, first.Digest, second.Digest)
}

func TestHasher_Sum_AbsentMarkerIsNoop(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		content,
		"line one\nline two\nno trailing newline",
		"\n\n\n",
		"a#b\n c\n",
	}

	for _, input := range inputs {
		plain, err := New().Sum(strings.NewReader(input), None())
		require.NoError(t, err)
		filtered, err := New().Sum(strings.NewReader(input), Skip("#"))
		require.NoError(t, err)

		assert.Equal(t, plain.Digest, filtered.Digest, "input %q", input)
		assert.Zero(t, filtered.SkippedLines, "input %q", input)
	}
}

func TestHasher_Sum_MarkerOnlyAtLineStart(t *testing.T) {
	t.Parallel()

	withInline, err := New().Sum(strings.NewReader("value # not a comment\n"), Skip("#"))
	require.NoError(t, err)
	plain, err := New().Sum(strings.NewReader("value # not a comment\n"), None())
	require.NoError(t, err)

	assert.Equal(t, plain.Digest, withInline.Digest)
}

func TestHasher_Sum_UnterminatedFinalLine(t *testing.T) {
	t.Parallel()

	// A trailing comment without newline is still a line and is skipped.
	sum, err := New().Sum(strings.NewReader(content+"# trailing"), Skip("#"))
	require.NoError(t, err)
	assert.Equal(t, contentHex, sum.Hex())
	assert.Equal(t, 1, sum.SkippedLines)

	// A trailing data chunk without newline is hashed.
	withTail, err := New().Sum(strings.NewReader(content+"tail"), Skip("#"))
	require.NoError(t, err)
	assert.NotEqual(t, contentHex, withTail.Hex())
}

func TestHasher_Sum_EmptyMarkerExcludesEverything(t *testing.T) {
	t.Parallel()

	sum, err := New().Sum(strings.NewReader(content+starComment1+"x"), Skip(""))
	require.NoError(t, err)
	assert.Equal(t, emptyHex, sum.Hex())
	assert.Equal(t, 3, sum.SkippedLines)
	assert.Zero(t, sum.Hashed)
}

func TestHasher_Sum_LinesLongerThanBuffer(t *testing.T) {
	t.Parallel()

	longComment := "#" + strings.Repeat("c", 500) + "\n"
	longData := strings.Repeat("d", 700) + "\n"
	input := longComment + content + longData + longComment

	small := New(WithBufferSize(16))
	sum, err := small.Sum(strings.NewReader(input), Skip("#"))
	require.NoError(t, err)

	want, err := New().Sum(strings.NewReader(content+longData), None())
	require.NoError(t, err)

	assert.Equal(t, want.Digest, sum.Digest)
	assert.Equal(t, 2, sum.SkippedLines)
	assert.Equal(t, int64(len(input)), sum.Bytes)
	assert.Equal(t, int64(len(content+longData)), sum.Hashed)
}

func TestHasher_Sum_MarkerLongerThanBuffer(t *testing.T) {
	t.Parallel()

	marker := strings.Repeat("=", 40)
	input := marker + " banner\n" + content + strings.Repeat("=", 39) + "\n"

	sum, err := New(WithBufferSize(16)).Sum(strings.NewReader(input), Skip(marker))
	require.NoError(t, err)

	want, err := New().Sum(strings.NewReader(content+strings.Repeat("=", 39)+"\n"), None())
	require.NoError(t, err)
	assert.Equal(t, want.Digest, sum.Digest)
	assert.Equal(t, 1, sum.SkippedLines)
}

func TestHasher_Sum_MarkerDoesNotSpanLines(t *testing.T) {
	t.Parallel()

	input := "a\nbc\n"
	plain, err := New().Sum(strings.NewReader(input), None())
	require.NoError(t, err)

	sum, err := New().Sum(strings.NewReader(input), Skip("a\nb"))
	require.NoError(t, err)
	assert.Equal(t, plain.Digest, sum.Digest)
	assert.Zero(t, sum.SkippedLines)

	// A marker ending in the line's own newline still matches.
	sum, err = New().Sum(strings.NewReader(input), Skip("a\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.SkippedLines)
	assert.Equal(t, int64(len("bc\n")), sum.Hashed)
}

func TestHasher_Sum_BinaryContent(t *testing.T) {
	t.Parallel()

	binary := []byte{0xff, 0xfe, 0x00, 0x80, '\n', '#', 0xc3, 0x28, '\n', 0x01, 0x02}
	sum, err := New().Sum(bytes.NewReader(binary), Skip("#"))
	require.NoError(t, err)

	want, err := New().Sum(bytes.NewReader([]byte{0xff, 0xfe, 0x00, 0x80, '\n', 0x01, 0x02}), None())
	require.NoError(t, err)
	assert.Equal(t, want.Digest, sum.Digest)
}

func TestHasher_Sum_OneByteReads(t *testing.T) {
	t.Parallel()

	input := starComment0 + content + starComment1
	sum, err := New().Sum(iotest.OneByteReader(strings.NewReader(input)), Skip("*"))
	require.NoError(t, err)
	assert.Equal(t, contentHex, sum.Hex())
}

func TestHasher_Sum_ReadError(t *testing.T) {
	t.Parallel()

	_, err := New().Sum(iotest.ErrReader(assert.AnError), None())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHasher_Sum_NilReader(t *testing.T) {
	t.Parallel()

	_, err := New().Sum(nil, None())
	assert.ErrorIs(t, err, ErrNilReader)
}

func TestHasher_SumFile(t *testing.T) {
	t.Parallel()

	t.Run("hashes file contents", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "infile.txt")
		require.NoError(t, os.WriteFile(path, []byte(slashComment2+content+slashComment2), 0o644))

		sum, err := New().SumFile(path, Skip("//"))
		require.NoError(t, err)
		assert.Equal(t, contentHex, sum.Hex())
	})

	t.Run("missing file wraps fs.ErrNotExist", func(t *testing.T) {
		t.Parallel()
		_, err := New().SumFile(filepath.Join(t.TempDir(), "missing.txt"), None())
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}
