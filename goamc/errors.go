package goamc

import "errors"

// Errors
var (
	// ErrNotReducible signals that the Yutsis graph of a term could not be
	// brought to zero nodes with the implemented reduction rules (topologies
	// beyond "square" are not supported). Callers may retry the term with a
	// different index permutation or report it as unreducible.
	ErrNotReducible = errors.New("yutsis graph not reducible to closed form")

	ErrMalformed       = errors.New("malformed coupling network")
	ErrIdxTypeMismatch = errors.New("index type mismatch")
	ErrBadSymbol       = errors.New("invalid angular-momentum symbol")
	ErrIterCap         = errors.New("iteration cap exceeded")
	ErrBadScheme       = errors.New("bad coupling scheme")
	ErrBadConvention   = errors.New("unknown reduced matrix element convention")
	ErrExpandFirst     = errors.New("term contains an unexpanded sum of nondiagonal factors")
	ErrNotImplemented  = errors.New("not implemented")
	ErrBadCatalogParam = errors.New("bad catalog param")
	ErrUnknownTensor   = errors.New("unknown tensor")
	ErrBadSubscripts   = errors.New("bad subscripts")
)
