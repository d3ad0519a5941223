package mtx

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for Matrix Market parsing.
var (
	// ErrBadBanner is returned when the first line is not a Matrix Market banner.
	ErrBadBanner = errors.New("mtx: malformed banner")

	// ErrUnsupported is returned for encodings this reader refuses (complex, vectors, ...).
	ErrUnsupported = errors.New("mtx: unsupported matrix type")

	// ErrBadSize is returned when the size line is missing or invalid.
	ErrBadSize = errors.New("mtx: malformed size line")

	// ErrMalformedEntry marks a data line that cannot be parsed into an entry.
	ErrMalformedEntry = errors.New("mtx: malformed entry")
)

// bannerPrefix starts every Matrix Market file.
const bannerPrefix = "%%MatrixMarket"

// Format is the storage layout named in the banner.
type Format string

// Field is the value type named in the banner.
type Field string

// Symmetry is the symmetry structure named in the banner.
type Symmetry string

// Recognized banner tokens.
const (
	Coordinate Format = "coordinate"
	Array      Format = "array"

	Real    Field = "real"
	Double  Field = "double"
	Integer Field = "integer"
	Pattern Field = "pattern"
	Complex Field = "complex"

	General       Symmetry = "general"
	Symmetric     Symmetry = "symmetric"
	SkewSymmetric Symmetry = "skew-symmetric"
	Hermitian     Symmetry = "hermitian"
)

// Banner is the parsed typecode of a Matrix Market file.
type Banner struct {
	Object   string
	Format   Format
	Field    Field
	Symmetry Symmetry
}

// ParseBanner parses a banner line such as
// "%%MatrixMarket matrix coordinate pattern general". Tokens after the
// prefix are case-insensitive. The result is checked with Supported.
func ParseBanner(line string) (Banner, error) {
	tok := strings.Fields(line)
	if len(tok) != 5 || tok[0] != bannerPrefix {
		return Banner{}, fmt.Errorf("%w: %q", ErrBadBanner, line)
	}
	b := Banner{
		Object:   strings.ToLower(tok[1]),
		Format:   Format(strings.ToLower(tok[2])),
		Field:    Field(strings.ToLower(tok[3])),
		Symmetry: Symmetry(strings.ToLower(tok[4])),
	}
	switch b.Format {
	case Coordinate, Array:
	default:
		return Banner{}, fmt.Errorf("%w: unknown format %q", ErrBadBanner, tok[2])
	}
	switch b.Field {
	case Real, Double, Integer, Pattern, Complex:
	default:
		return Banner{}, fmt.Errorf("%w: unknown field %q", ErrBadBanner, tok[3])
	}
	switch b.Symmetry {
	case General, Symmetric, SkewSymmetric, Hermitian:
	default:
		return Banner{}, fmt.Errorf("%w: unknown symmetry %q", ErrBadBanner, tok[4])
	}

	return b, b.Supported()
}

// Supported reports, as an error wrapping ErrUnsupported, whether this
// reader can turn the banner's matrix into a graph.
func (b Banner) Supported() error {
	switch {
	case b.Object != "matrix":
		return fmt.Errorf("%w: [%s]: only matrices describe graphs", ErrUnsupported, b)
	case b.Field == Complex:
		return fmt.Errorf("%w: [%s]: complex values", ErrUnsupported, b)
	case b.Field == Pattern && b.Format == Array:
		return fmt.Errorf("%w: [%s]: pattern arrays are not valid Matrix Market", ErrUnsupported, b)
	}

	return nil
}

// Sparse reports whether entries are stored as coordinates.
func (b Banner) Sparse() bool { return b.Format == Coordinate }

// Undirected reports whether the symmetry marker forces undirected
// interpretation of the entries.
func (b Banner) Undirected() bool { return b.Symmetry != General }

// HasValue reports whether coordinate entries carry a value column.
func (b Banner) HasValue() bool { return b.Field != Pattern }

// String renders the typecode as "matrix coordinate pattern general".
func (b Banner) String() string {
	return fmt.Sprintf("%s %s %s %s", b.Object, b.Format, b.Field, b.Symmetry)
}
