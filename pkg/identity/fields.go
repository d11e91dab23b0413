// Package identity defines the canonical identity-field schema shared by every
// document source, and the salted hashing used before anything leaves the core.
//
// Domain Purity: no I/O and no clock access. Values are never logged.
package identity

import (
	"sort"
	"strings"
)

// Canonical field names. Both document parsers project onto exactly this set.
const (
	FullName       = "full_name"
	Surname        = "surname"
	GivenNames     = "given_names"
	DateOfBirth    = "date_of_birth"
	DocumentNumber = "document_number"
	ExpiryDate     = "expiry_date"
	Sex            = "sex"
	Nationality    = "nationality"
	Address        = "address"
)

var schema = []string{
	FullName,
	Surname,
	GivenNames,
	DateOfBirth,
	DocumentNumber,
	ExpiryDate,
	Sex,
	Nationality,
	Address,
}

var schemaSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(schema))
	for _, name := range schema {
		m[name] = struct{}{}
	}
	return m
}()

// Schema returns the canonical field names in declaration order.
func Schema() []string {
	return append([]string(nil), schema...)
}

// IsCanonical reports whether name belongs to the canonical schema.
func IsCanonical(name string) bool {
	_, ok := schemaSet[name]
	return ok
}

// Fields is a canonical identity-field map.
//
// Invariants:
//   - Keys are members of Schema()
//   - Values are non-empty after trimming
type Fields map[string]string

// NewFields builds a Fields map, dropping non-canonical keys and blank values.
func NewFields(values map[string]string) Fields {
	out := make(Fields, len(values))
	for k, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || !IsCanonical(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// Names returns the populated field names sorted lexically.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Raw returns a copy as a plain map. Callers own the copy.
func (f Fields) Raw() map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
