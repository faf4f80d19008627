package verify

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/jamesainslie/skipsum/pkg/skipsum/digest"
	"github.com/jamesainslie/skipsum/pkg/skipsum/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fileContent = "abcdef\n"
	contentHex  = "ae0666f161fed1a5dde998bbd0e140550d2da0db27db1d0e31e370f2bd366a57"
	starComment = "* this is a comment #2\n"
	badComment  = "// bla\n"
)

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// collect drains v and returns its results and terminal error.
func collect(v *Verifier) ([]Result, error) {
	var results []Result
	for v.Next() {
		results = append(results, v.Result())
	}
	return results, v.Err()
}

func statuses(results []Result) []Status {
	out := make([]Status, len(results))
	for i, r := range results {
		out[i] = r.Status
	}
	return out
}

func TestVerify_SingleFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Status
	}{
		{name: "content differs", content: "nope", want: StatusFailed},
		{name: "plain content", content: fileContent, want: StatusOK},
		{name: "comments skipped", content: starComment + fileContent + starComment, want: StatusOK},
		{name: "foreign comment hashed", content: badComment + fileContent + starComment, want: StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			target := writeFile(t, dir, "infile.txt", tt.content)
			manifestText := "# -s *\n" + contentHex + "  " + target

			modes := map[string]Mode{
				"explicit": Explicit(digest.Skip("*")),
				"auto":     AutoDetect(),
			}
			for name, mode := range modes {
				results, err := collect(New().Verify(strings.NewReader(manifestText), mode))
				require.NoError(t, err, name)
				require.Len(t, results, 1, name)
				assert.Equal(t, tt.want, results[0].Status, name)
				assert.Equal(t, target, results[0].Path, name)
				assert.Equal(t, 2, results[0].Line, name)
			}
		})
	}
}

func TestVerify_AutoDetectMatchesExplicit(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	files := []string{
		writeFile(t, dir, "a.txt", fileContent),
		writeFile(t, dir, "b.txt", starComment+fileContent),
		writeFile(t, dir, "c.txt", badComment+fileContent),
	}

	var buf bytes.Buffer
	w := manifest.NewWriter(&buf)
	for _, f := range files {
		require.NoError(t, w.WriteEntry(digest.Skip("*"), contentHex, f))
	}

	explicit, err := collect(New().Verify(bytes.NewReader(buf.Bytes()), Explicit(digest.Skip("*"))))
	require.NoError(t, err)
	auto, err := collect(New().Verify(bytes.NewReader(buf.Bytes()), AutoDetect()))
	require.NoError(t, err)

	assert.Equal(t, statuses(explicit), statuses(auto))
	assert.Equal(t, []Status{StatusOK, StatusOK, StatusFailed}, statuses(auto))
}

func TestVerify_GeneratedManifestRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	h := digest.New()

	contents := []string{
		fileContent,
		"// header\n" + fileContent + "// footer",
		"",
		"no newline at all",
	}
	var buf bytes.Buffer
	w := manifest.NewWriter(&buf)
	for i, c := range contents {
		path := writeFile(t, dir, "f"+string(rune('0'+i)), c)
		sum, err := h.SumFile(path, digest.Skip("//"))
		require.NoError(t, err)
		require.NoError(t, w.WriteEntry(digest.Skip("//"), sum.Hex(), path))
	}

	for _, mode := range []Mode{Explicit(digest.Skip("//")), AutoDetect()} {
		results, err := collect(New().Verify(bytes.NewReader(buf.Bytes()), mode))
		require.NoError(t, err, mode.String())
		require.Len(t, results, len(contents), mode.String())
		for _, r := range results {
			assert.True(t, r.OK(), "%s: %s", mode, r.Path)
		}
	}
}

func TestVerify_AutoDetectMidStreamSwitch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	starA := writeFile(t, dir, "star-a.txt", starComment+fileContent)
	starB := writeFile(t, dir, "star-b.txt", fileContent+starComment)
	slash := writeFile(t, dir, "slash.txt", badComment+fileContent)

	manifestText := strings.Join([]string{
		"# -s *",
		contentHex + "  " + starA,
		contentHex + "  " + starB,
		"# -s //",
		contentHex + "  " + slash,
		contentHex + "  " + starA,
	}, "\n") + "\n"

	v := New().Verify(strings.NewReader(manifestText), AutoDetect())
	results, err := collect(v)
	require.NoError(t, err)

	// The second star entry has no directive of its own: the filter persists.
	// After the switch, "//" applies and the star file no longer verifies.
	assert.Equal(t, []Status{StatusOK, StatusOK, StatusOK, StatusFailed}, statuses(results))
	assert.Equal(t, "*", results[1].Filter.String())
	assert.Equal(t, "//", results[2].Filter.String())
	assert.Equal(t, "//", v.Filter().String())
	assert.Equal(t, 6, v.Lines())
}

func TestVerify_AutoDetectStartsUnfiltered(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	commented := writeFile(t, dir, "commented.txt", starComment+fileContent)
	plain := writeFile(t, dir, "plain.txt", fileContent)

	manifestText := contentHex + "  " + commented + "\n" + contentHex + "  " + plain + "\n"
	results, err := collect(New().Verify(strings.NewReader(manifestText), AutoDetect()))
	require.NoError(t, err)

	assert.Equal(t, []Status{StatusFailed, StatusOK}, statuses(results))
	assert.False(t, results[0].Filter.Active())
}

func TestVerify_ExplicitIgnoresDirectives(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := writeFile(t, dir, "infile.txt", starComment+fileContent)
	manifestText := "# -s *\n" + contentHex + "  " + target + "\n"

	results, err := collect(New().Verify(strings.NewReader(manifestText), Explicit(digest.None())))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusFailed, results[0].Status)

	results, err = collect(New().Verify(strings.NewReader(manifestText), Explicit(digest.Skip("#"))))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusFailed, results[0].Status, "explicit marker wins over directive")
}

func TestVerify_PlainCommentsSkipped(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := writeFile(t, dir, "infile.txt", fileContent)
	manifestText := "# generated by hand\n#\n" + contentHex + "  " + target + "\n# trailing\n"

	for _, mode := range []Mode{AutoDetect(), Explicit(digest.None())} {
		results, err := collect(New().Verify(strings.NewReader(manifestText), mode))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results[0].OK())
		assert.False(t, results[0].Filter.Active(), "plain comments never set a filter")
	}
}

func TestVerify_BinarySeparator(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := writeFile(t, dir, "infile.bin", fileContent)

	results, err := collect(New().Verify(strings.NewReader(contentHex+" *"+target+"\n"), AutoDetect()))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
}

func TestVerify_MalformedLineAborts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := writeFile(t, dir, "infile.txt", fileContent)

	var opened []string
	opener := func(name string) (io.ReadCloser, error) {
		opened = append(opened, name)
		return os.Open(name)
	}

	manifestText := contentHex + "  " + target + "\n" +
		"not a manifest line\n" +
		contentHex + "  " + target + "\n"

	results, err := collect(New(WithOpener(opener)).Verify(strings.NewReader(manifestText), AutoDetect()))
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrMalformedLine)

	var mErr *manifest.MalformedLineError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, 2, mErr.Line)
	assert.Equal(t, "not a manifest line", string(mErr.Text))

	require.Len(t, results, 1, "entries before the malformed line are still reported")
	assert.Len(t, opened, 1, "entries after the malformed line are not processed")
}

func TestVerify_MissingTargetContinues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := writeFile(t, dir, "infile.txt", fileContent)
	missing := filepath.Join(dir, "missing.txt")

	manifestText := contentHex + "  " + missing + "\n" + contentHex + "  " + target + "\n"
	results, err := collect(New().Verify(strings.NewReader(manifestText), AutoDetect()))
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, StatusNotFound, results[0].Status)
	assert.Error(t, results[0].Err)
	assert.Empty(t, results[0].Actual)
	assert.Equal(t, StatusOK, results[1].Status)
}

func TestVerify_DirectoryTargetUnreadable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	results, err := collect(New().Verify(strings.NewReader(contentHex+"  "+dir+"\n"), AutoDetect()))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusUnreadable, results[0].Status)
	assert.Error(t, results[0].Err)
}

type trackingCloser struct {
	io.Reader
	closed *int
}

func (c trackingCloser) Close() error {
	*c.closed++
	return nil
}

func TestVerify_TargetsClosed(t *testing.T) {
	t.Parallel()

	closed := 0
	opener := func(name string) (io.ReadCloser, error) {
		switch name {
		case "good":
			return trackingCloser{Reader: strings.NewReader(fileContent), closed: &closed}, nil
		case "broken":
			return trackingCloser{Reader: iotest.ErrReader(assert.AnError), closed: &closed}, nil
		}
		return nil, os.ErrNotExist
	}

	manifestText := contentHex + "  good\n" + contentHex + "  broken\n" + contentHex + "  absent\n"
	results, err := collect(New(WithOpener(opener)).Verify(strings.NewReader(manifestText), AutoDetect()))
	require.NoError(t, err)

	assert.Equal(t, []Status{StatusOK, StatusUnreadable, StatusNotFound}, statuses(results))
	assert.ErrorIs(t, results[1].Err, assert.AnError)
	assert.Equal(t, 2, closed)
}

func TestVerify_CaseSensitiveComparison(t *testing.T) {
	t.Parallel()

	opener := func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(fileContent)), nil
	}
	manifestText := strings.ToUpper(contentHex) + "  upper\n"

	results, err := collect(New(WithOpener(opener)).Verify(strings.NewReader(manifestText), AutoDetect()))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Equal(t, contentHex, results[0].Actual)
}

func TestVerify_ManifestReadError(t *testing.T) {
	t.Parallel()

	v := New().Verify(iotest.ErrReader(assert.AnError), AutoDetect())
	assert.False(t, v.Next())
	assert.ErrorIs(t, v.Err(), assert.AnError)
	assert.False(t, v.Next(), "verifier stays exhausted")
}

func TestVerify_EmptyManifest(t *testing.T) {
	t.Parallel()

	v := New().Verify(strings.NewReader(""), AutoDetect())
	assert.False(t, v.Next())
	assert.NoError(t, v.Err())
	assert.Zero(t, v.Lines())
}

func TestMode_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "auto-detect", AutoDetect().String())
	assert.Equal(t, "explicit none", Explicit(digest.None()).String())
	assert.Equal(t, `explicit "*"`, Explicit(digest.Skip("*")).String())
	assert.True(t, AutoDetect().Auto())
	assert.False(t, Explicit(digest.Skip("*")).Auto())
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OK", StatusOK.String())
	assert.Equal(t, "FAILED", StatusFailed.String())
	assert.Equal(t, "NOT FOUND", StatusNotFound.String())
	assert.Equal(t, "UNREADABLE", StatusUnreadable.String())
	assert.Equal(t, "UNKNOWN", Status(9).String())
}
