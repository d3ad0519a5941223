// Package mtx reads graphs stored in the Matrix Market exchange format and
// exposes them as a typed edge stream for package builder.
//
// Format
//
//	%%MatrixMarket matrix coordinate pattern symmetric
//	% comment lines start with '%'
//	3 3 2          <- rows cols entries   (coordinate)
//	2 1            <- 1-based row col [value]
//	3 2
//
// Supported banners: object "matrix"; format "coordinate" (sparse) or "array"
// (dense, column-major values, non-zeros become edges); field "real",
// "double", "integer" or "pattern"; symmetry "general", "symmetric",
// "skew-symmetric" or "hermitian". Any non-general symmetry marks the graph
// undirected. Complex fields, pattern arrays and vectors are rejected with
// ErrUnsupported.
//
// Errors
//
//   - ErrBadBanner, ErrBadSize, ErrUnsupported are fatal and classified
//     fault.Config.
//   - ErrMalformedEntry is classified fault.Ingest and carries the line
//     number; the Reader stays usable so callers can skip the record.
package mtx
