package sentinel

import "errors"

// Store-level facts. Stores return these (usually wrapped) and services map
// them onto domain-errors codes.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
