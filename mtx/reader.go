package mtx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvlbfs/builder"
	"github.com/katalvlaran/lvlbfs/fault"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Header describes the matrix after the banner and size line are read.
type Header struct {
	Banner Banner
	// Rows and Cols are the declared dimensions.
	Rows, Cols int
	// Entries is the declared entry count (rows*cols, or the stored triangle,
	// for arrays).
	Entries int
}

// Vertices returns the vertex count used for the graph: max(Rows, Cols), so
// every in-range id of a non-square matrix has a vertex.
func (h Header) Vertices() int { return max(h.Rows, h.Cols) }

// Square reports whether Rows == Cols.
func (h Header) Square() bool { return h.Rows == h.Cols }

// Entry is one stored matrix element with 0-based indices.
type Entry struct {
	Row, Col int
	// Value is 1 for pattern matrices.
	Value float64
	// Line is the 1-based input line.
	Line int
}

// Reader streams entries from a Matrix Market source.
type Reader struct {
	sc   *bufio.Scanner
	hdr  Header
	line int
	// consumed counts data records seen so far, malformed ones included.
	consumed int
	// array cursor (0-based row, col) of the next stored value.
	ar, ac int
}

// NewReader reads the banner, comments and size line from r.
// All failures are classified fault.Config.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	rd := &Reader{sc: sc}

	first, ok := rd.scan()
	if !ok {
		return nil, rd.configErr("read-banner", fmt.Errorf("%w: empty input", ErrBadBanner))
	}
	b, err := ParseBanner(first)
	if err != nil {
		return nil, rd.configErr("read-banner", err)
	}
	rd.hdr.Banner = b

	sizeLine, ok := rd.nextData()
	if !ok {
		return nil, rd.configErr("read-size", fmt.Errorf("%w: missing", ErrBadSize))
	}
	if err = rd.parseSize(sizeLine); err != nil {
		return nil, rd.configErr("read-size", err)
	}
	if !b.Sparse() {
		rd.ar, rd.ac = rd.firstArrayRow(0), 0
	}

	return rd, nil
}

// Open opens path and returns a Reader plus the file to close.
func Open(path string) (*Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fault.New(fault.Config, "open", err)
	}
	rd, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return rd, f, nil
}

// Header returns the parsed header.
func (r *Reader) Header() Header { return r.hdr }

// Missing reports how many declared entries were absent when the input ended.
func (r *Reader) Missing() int { return r.hdr.Entries - r.consumed }

// Next returns the next stored entry, io.EOF once the declared entries are
// consumed or the input ends. A malformed record yields a fault.Ingest error
// and consumes its slot; the next call continues with the following line.
// Zero values of array matrices are not returned.
func (r *Reader) Next() (Entry, error) {
	for r.consumed < r.hdr.Entries {
		text, ok := r.nextData()
		if !ok {
			if err := r.sc.Err(); err != nil {
				return Entry{}, fmt.Errorf("mtx: line %d: %w", r.line+1, err)
			}
			return Entry{}, io.EOF
		}
		r.consumed++
		if r.hdr.Banner.Sparse() {
			return r.parseCoordinate(text)
		}
		e, keep, err := r.parseArray(text)
		if err != nil || keep {
			return e, err
		}
	}

	return Entry{}, io.EOF
}

// Edges adapts the Reader to builder.EdgeStream (row → col).
func (r *Reader) Edges() builder.EdgeStream { return edgeStream{r} }

type edgeStream struct{ r *Reader }

func (s edgeStream) Next() (builder.Edge, error) {
	e, err := s.r.Next()
	if err != nil {
		return builder.Edge{}, err
	}

	return builder.Edge{From: e.Row, To: e.Col, Line: e.Line}, nil
}

func (r *Reader) parseSize(text string) error {
	tok := strings.Fields(text)
	want := 3
	if !r.hdr.Banner.Sparse() {
		want = 2
	}
	if len(tok) != want {
		return fmt.Errorf("%w: want %d integers, got %q", ErrBadSize, want, text)
	}
	vals := make([]int, want)
	for i, t := range tok {
		v, err := strconv.Atoi(t)
		if err != nil || v < 0 {
			return fmt.Errorf("%w: %q", ErrBadSize, text)
		}
		vals[i] = v
	}
	r.hdr.Rows, r.hdr.Cols = vals[0], vals[1]
	if r.hdr.Rows < 1 || r.hdr.Cols < 1 {
		return fmt.Errorf("%w: empty matrix %dx%d", ErrBadSize, r.hdr.Rows, r.hdr.Cols)
	}
	if r.hdr.Banner.Sparse() {
		r.hdr.Entries = vals[2]
		return nil
	}
	r.hdr.Entries = r.arrayEntries()

	return nil
}

func (r *Reader) parseCoordinate(text string) (Entry, error) {
	tok := strings.Fields(text)
	want := 2
	if r.hdr.Banner.HasValue() {
		want = 3
	}
	if len(tok) < want {
		return Entry{}, r.ingestErr(fmt.Errorf("%w: want %d fields, got %q", ErrMalformedEntry, want, text))
	}
	row, err1 := strconv.Atoi(tok[0])
	col, err2 := strconv.Atoi(tok[1])
	if err := errors.Join(err1, err2); err != nil {
		return Entry{}, r.ingestErr(fmt.Errorf("%w: %q: %v", ErrMalformedEntry, text, err))
	}
	if row < 1 || row > r.hdr.Rows || col < 1 || col > r.hdr.Cols {
		return Entry{}, r.ingestErr(fmt.Errorf("%w: (%d,%d) outside %dx%d",
			ErrMalformedEntry, row, col, r.hdr.Rows, r.hdr.Cols))
	}
	e := Entry{Row: row - 1, Col: col - 1, Value: 1, Line: r.line}
	if want == 3 {
		v, err := r.parseValue(tok[2])
		if err != nil {
			return Entry{}, r.ingestErr(fmt.Errorf("%w: value %q: %v", ErrMalformedEntry, tok[2], err))
		}
		e.Value = v
	}

	return e, nil
}

// parseArray reads one column-major value; keep is false for zeros.
func (r *Reader) parseArray(text string) (Entry, bool, error) {
	row, col := r.ar, r.ac
	r.advanceArray()
	tok := strings.Fields(text)
	if len(tok) < 1 {
		return Entry{}, false, r.ingestErr(fmt.Errorf("%w: empty value", ErrMalformedEntry))
	}
	v, err := r.parseValue(tok[0])
	if err != nil {
		return Entry{}, false, r.ingestErr(fmt.Errorf("%w: value %q: %v", ErrMalformedEntry, tok[0], err))
	}
	if v == 0 {
		return Entry{}, false, nil
	}

	return Entry{Row: row, Col: col, Value: v, Line: r.line}, true, nil
}

func (r *Reader) parseValue(s string) (float64, error) {
	if r.hdr.Banner.Field == Integer {
		v, err := strconv.ParseInt(s, 10, 64)
		return float64(v), err
	}

	return strconv.ParseFloat(s, 64)
}

// firstArrayRow is the first stored row of column c: symmetric arrays keep
// the lower triangle including the diagonal, skew-symmetric ones exclude it.
func (r *Reader) firstArrayRow(c int) int {
	switch r.hdr.Banner.Symmetry {
	case Symmetric, Hermitian:
		return c
	case SkewSymmetric:
		return c + 1
	default:
		return 0
	}
}

func (r *Reader) arrayEntries() int {
	total := 0
	for c := 0; c < r.hdr.Cols; c++ {
		if first := r.firstArrayRow(c); first < r.hdr.Rows {
			total += r.hdr.Rows - first
		}
	}

	return total
}

func (r *Reader) advanceArray() {
	r.ar++
	for r.ar >= r.hdr.Rows && r.ac < r.hdr.Cols {
		r.ac++
		r.ar = r.firstArrayRow(r.ac)
	}
}

// scan returns the next raw line.
func (r *Reader) scan() (string, bool) {
	if !r.sc.Scan() {
		return "", false
	}
	r.line++

	return r.sc.Text(), true
}

// nextData returns the next line that is neither blank nor a comment.
func (r *Reader) nextData() (string, bool) {
	for {
		text, ok := r.scan()
		if !ok {
			return "", false
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "%") {
			continue
		}

		return trimmed, true
	}
}

func (r *Reader) configErr(op string, err error) error {
	e := fault.New(fault.Config, op, err)
	e.Line = r.line

	return e
}

func (r *Reader) ingestErr(err error) error {
	e := fault.New(fault.Ingest, "entry", err)
	e.Line = r.line

	return e
}
