package mtx_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlbfs/builder"
	"github.com/katalvlaran/lvlbfs/fault"
	"github.com/katalvlaran/lvlbfs/mtx"
)

// drain reads every entry, collecting ingest errors separately.
func drain(t *testing.T, r *mtx.Reader) ([]mtx.Entry, []error) {
	t.Helper()
	var (
		entries []mtx.Entry
		warns   []error
	)
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return entries, warns
		}
		if err != nil {
			require.ErrorIs(t, err, fault.ErrIngest)
			warns = append(warns, err)
			continue
		}
		entries = append(entries, e)
	}
}

func TestParseBanner(t *testing.T) {
	cases := []struct {
		line    string
		wantErr error
		undir   bool
	}{
		{"%%MatrixMarket matrix coordinate pattern general", nil, false},
		{"%%MatrixMarket matrix coordinate real symmetric", nil, true},
		{"%%MatrixMarket MATRIX Coordinate Integer Skew-Symmetric", nil, true},
		{"%%MatrixMarket matrix array real general", nil, false},
		{"%%MatrixMarket matrix coordinate complex general", mtx.ErrUnsupported, false},
		{"%%MatrixMarket matrix array pattern general", mtx.ErrUnsupported, false},
		{"%%MatrixMarket vector coordinate real general", mtx.ErrUnsupported, false},
		{"%%MatrixMarket matrix sparse real general", mtx.ErrBadBanner, false},
		{"%%MatrixMarket matrix coordinate real", mtx.ErrBadBanner, false},
		{"%MatrixMarket matrix coordinate real general", mtx.ErrBadBanner, false},
		{"%%MatrixMarket matrix coordinate quaternion general", mtx.ErrBadBanner, false},
		{"%%MatrixMarket matrix coordinate real diagonal", mtx.ErrBadBanner, false},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			b, err := mtx.ParseBanner(tc.line)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.undir, b.Undirected())
		})
	}
}

func TestReader_CoordinatePattern(t *testing.T) {
	src := `%%MatrixMarket matrix coordinate pattern general
% a directed triangle
%
3 3 3
1 2

2 3
3 1
`
	r, err := mtx.NewReader(strings.NewReader(src))
	require.NoError(t, err)
	h := r.Header()
	assert.Equal(t, mtx.Header{
		Banner: mtx.Banner{Object: "matrix", Format: mtx.Coordinate, Field: mtx.Pattern, Symmetry: mtx.General},
		Rows:   3, Cols: 3, Entries: 3,
	}, h)
	assert.True(t, h.Square())
	assert.Equal(t, 3, h.Vertices())

	entries, warns := drain(t, r)
	assert.Empty(t, warns)
	assert.Equal(t, []mtx.Entry{
		{Row: 0, Col: 1, Value: 1, Line: 5},
		{Row: 1, Col: 2, Value: 1, Line: 7},
		{Row: 2, Col: 0, Value: 1, Line: 8},
	}, entries)
	assert.Zero(t, r.Missing())
}

func TestReader_CoordinateRealWithMalformedRecords(t *testing.T) {
	src := `%%MatrixMarket matrix coordinate real general
4 3 6
1 2 0.5
x 3 1.0
2 9 1.0
3 1
4 1 1e3
2 2 nope
`
	r, err := mtx.NewReader(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 4, r.Header().Vertices())
	assert.False(t, r.Header().Square())

	entries, warns := drain(t, r)
	require.Len(t, entries, 2)
	assert.Equal(t, mtx.Entry{Row: 0, Col: 1, Value: 0.5, Line: 3}, entries[0])
	assert.Equal(t, mtx.Entry{Row: 3, Col: 0, Value: 1000, Line: 7}, entries[1])

	require.Len(t, warns, 4)
	wantLines := []int{4, 5, 6, 8}
	for i, w := range warns {
		assert.ErrorIs(t, w, mtx.ErrMalformedEntry)
		var fe *fault.Error
		require.True(t, errors.As(w, &fe))
		assert.Equal(t, wantLines[i], fe.Line)
	}
}

func TestReader_TruncatedBody(t *testing.T) {
	src := "%%MatrixMarket matrix coordinate integer general\n3 3 4\n1 2 7\n2 3 1\n"
	r, err := mtx.NewReader(strings.NewReader(src))
	require.NoError(t, err)
	entries, _ := drain(t, r)
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, r.Missing())
}

func TestReader_ArrayGeneralAndSymmetric(t *testing.T) {
	// column-major 2x2: [[0 3] [5 0]] stored as a11 a21 a12 a22
	general := "%%MatrixMarket matrix array real general\n2 2\n0\n5\n3\n0\n"
	r, err := mtx.NewReader(strings.NewReader(general))
	require.NoError(t, err)
	assert.Equal(t, 4, r.Header().Entries)
	entries, warns := drain(t, r)
	assert.Empty(t, warns)
	assert.Equal(t, []mtx.Entry{
		{Row: 1, Col: 0, Value: 5, Line: 4},
		{Row: 0, Col: 1, Value: 3, Line: 5},
	}, entries)

	// lower triangle of a symmetric 3x3: a11 a21 a31 a22 a32 a33
	sym := "%%MatrixMarket matrix array integer symmetric\n3 3\n0\n1\n0\n0\n2\n0\n"
	r, err = mtx.NewReader(strings.NewReader(sym))
	require.NoError(t, err)
	assert.Equal(t, 6, r.Header().Entries)
	assert.True(t, r.Header().Banner.Undirected())
	entries, _ = drain(t, r)
	assert.Equal(t, []mtx.Entry{
		{Row: 1, Col: 0, Value: 1, Line: 4},
		{Row: 2, Col: 1, Value: 2, Line: 7},
	}, entries)

	// strictly lower triangle of a skew-symmetric 3x3: a21 a31 a32
	skew := "%%MatrixMarket matrix array real skew-symmetric\n3 3\n1\n0\n-1\n"
	r, err = mtx.NewReader(strings.NewReader(skew))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Header().Entries)
	entries, _ = drain(t, r)
	assert.Equal(t, []mtx.Entry{
		{Row: 1, Col: 0, Value: 1, Line: 3},
		{Row: 2, Col: 1, Value: -1, Line: 5},
	}, entries)
}

func TestNewReader_FatalHeaders(t *testing.T) {
	cases := map[string]struct {
		src  string
		want error
	}{
		"empty":         {"", mtx.ErrBadBanner},
		"no banner":     {"3 3 1\n1 2\n", mtx.ErrBadBanner},
		"complex":       {"%%MatrixMarket matrix coordinate complex general\n1 1 1\n1 1 1 0\n", mtx.ErrUnsupported},
		"missing size":  {"%%MatrixMarket matrix coordinate pattern general\n% only comments\n", mtx.ErrBadSize},
		"short size":    {"%%MatrixMarket matrix coordinate pattern general\n3 3\n", mtx.ErrBadSize},
		"negative size": {"%%MatrixMarket matrix coordinate pattern general\n3 -3 1\n", mtx.ErrBadSize},
		"zero rows":     {"%%MatrixMarket matrix coordinate pattern general\n0 0 0\n", mtx.ErrBadSize},
		"garbled size":  {"%%MatrixMarket matrix array real general\nthree 3\n", mtx.ErrBadSize},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := mtx.NewReader(strings.NewReader(tc.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, fault.ErrConfig)
		})
	}
}

func TestOpen_AndBuildGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.mtx")
	src := "%%MatrixMarket matrix coordinate pattern symmetric\n3 3 3\n2 1\n3 2\n3 1\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	r, closer, err := mtx.Open(path)
	require.NoError(t, err)
	defer closer.Close()

	h := r.Header()
	g, rep, err := builder.Build(h.Vertices(), r.Edges(),
		builder.WithUndirected(h.Banner.Undirected()),
		builder.WithExpectedEdges(h.Entries),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Accepted)
	assert.True(t, g.Undirected())
	assert.Equal(t, 6, g.Size())
	assert.Equal(t, []int32{1, 2}, g.Neighbors(0))

	_, _, err = mtx.Open(filepath.Join(dir, "missing.mtx"))
	assert.ErrorIs(t, err, fault.ErrConfig)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
