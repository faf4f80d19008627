package digest

import (
	"bufio"
	"bytes"
	_ "crypto/sha256" // registers SHA-256 for go-digest
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/skipsum/pkg/skipsum/logging"
	godigest "github.com/opencontainers/go-digest"
)

// logger is the package-level logger for hashing.
var logger = logging.Get("digest")

// DefaultBufferSize is the read buffer used when no option overrides it.
const DefaultBufferSize = 64 * 1024

// HexLength is the length of an encoded SHA-256 digest.
const HexLength = 64

// ErrNilReader is returned when Sum is called without a reader.
var ErrNilReader = errors.New("nil reader")

// Sum is the outcome of hashing one stream.
type Sum struct {
	// Digest is the SHA-256 digest in "sha256:<hex>" form.
	Digest godigest.Digest

	// Bytes is the number of bytes read from the stream.
	Bytes int64

	// Hashed is the number of bytes fed into the digest.
	Hashed int64

	// SkippedLines counts the lines excluded by the filter.
	SkippedLines int
}

// Hex returns the lowercase hex encoding of the digest.
func (s Sum) Hex() string {
	return s.Digest.Encoded()
}

// Hasher computes filtered SHA-256 digests.
type Hasher struct {
	bufferSize int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithBufferSize sets the read buffer size. Values below the bufio minimum are raised to it.
func WithBufferSize(n int) Option {
	return func(h *Hasher) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// New creates a Hasher with the given options.
func New(opts ...Option) *Hasher {
	h := &Hasher{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Sum hashes r line by line, leaving out lines excluded by f.
// A line is everything up to and including '\n', or the final unterminated chunk.
// Only the first len(marker) bytes of each line are inspected, so lines of any
// length are handled without buffering them whole.
func (h *Hasher) Sum(r io.Reader, f Filter) (Sum, error) {
	if r == nil {
		return Sum{}, ErrNilReader
	}

	size := h.bufferSize
	if len(f.marker) > size {
		size = len(f.marker)
	}
	br := bufio.NewReaderSize(r, size)
	hash := godigest.SHA256.Hash()

	var sum Sum
	for {
		// Stop cleanly at end of stream between lines.
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Sum{}, fmt.Errorf("reading stream: %w", err)
		}

		skip := false
		if f.active {
			head, err := br.Peek(len(f.marker))
			if err != nil && !errors.Is(err, io.EOF) {
				return Sum{}, fmt.Errorf("reading stream: %w", err)
			}
			// A marker never matches across a line break.
			if i := bytes.IndexByte(head, '\n'); i >= 0 {
				head = head[:i+1]
			}
			skip = f.Excludes(head)
		}

		eof, err := consumeLine(br, hash, skip, &sum)
		if err != nil {
			return Sum{}, err
		}
		if skip {
			sum.SkippedLines++
		}
		if eof {
			break
		}
	}

	sum.Digest = godigest.NewDigest(godigest.SHA256, hash)
	return sum, nil
}

// consumeLine reads one line in buffer-sized chunks, writing them to w unless skip is set.
func consumeLine(br *bufio.Reader, w io.Writer, skip bool, sum *Sum) (bool, error) {
	for {
		chunk, err := br.ReadSlice('\n')
		sum.Bytes += int64(len(chunk))
		if !skip && len(chunk) > 0 {
			// hash.Hash writes never fail.
			_, _ = w.Write(chunk)
			sum.Hashed += int64(len(chunk))
		}

		switch {
		case err == nil:
			return false, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return true, nil
		default:
			return false, fmt.Errorf("reading stream: %w", err)
		}
	}
}

// SumFile opens path, hashes it with Sum and closes it again.
// Open errors wrap the underlying *fs.PathError, so errors.Is(err, fs.ErrNotExist) works.
func (h *Hasher) SumFile(path string, f Filter) (result Sum, retErr error) {
	file, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return Sum{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	sum, err := h.Sum(file, f)
	if err != nil {
		return Sum{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	logger.Debug("hashed file",
		"path", path,
		"read", humanize.IBytes(uint64(sum.Bytes)),
		"skipped_lines", sum.SkippedLines,
	)
	return sum, nil
}
