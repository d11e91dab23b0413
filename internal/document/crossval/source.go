package crossval

import (
	"sort"
	"strings"

	"docverify/internal/document/aamva"
	"docverify/internal/document/mrz"
	"docverify/pkg/identity"
)

// SourceKind names where the reference identity fields came from.
type SourceKind string

const (
	SourceAAMVA  SourceKind = "aamva"
	SourceMRZ    SourceKind = "mrz"
	SourceRawMap SourceKind = "raw_map"
)

// Source is the reference side of a cross-validation. It is a closed set:
// build one with FromAAMVA, FromMRZ or FromRawMap.
type Source interface {
	Kind() SourceKind
	IdentityFields() identity.Fields
	sealed()
}

type aamvaSource struct{ rec *aamva.Record }

// FromAAMVA wraps a parsed driver licence barcode.
func FromAAMVA(rec *aamva.Record) Source { return aamvaSource{rec: rec} }

func (s aamvaSource) Kind() SourceKind { return SourceAAMVA }
func (aamvaSource) sealed()            {}

func (s aamvaSource) IdentityFields() identity.Fields {
	if s.rec == nil {
		return identity.Fields{}
	}
	return s.rec.IdentityFields()
}

type mrzSource struct{ rec *mrz.Record }

// FromMRZ wraps a parsed machine-readable zone.
func FromMRZ(rec *mrz.Record) Source { return mrzSource{rec: rec} }

func (s mrzSource) Kind() SourceKind { return SourceMRZ }
func (mrzSource) sealed()            {}

func (s mrzSource) IdentityFields() identity.Fields {
	if s.rec == nil {
		return identity.Fields{}
	}
	return s.rec.IdentityFields()
}

type rawSource struct{ fields identity.Fields }

// FromRawMap wraps an already extracted field map. Keys are matched case
// insensitively and known aliases (last_name, dob, ...) are folded onto the
// canonical names; anything else is dropped.
func FromRawMap(values map[string]string) Source {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	canonical := make(map[string]string, len(values))
	for _, k := range keys {
		key := strings.ToLower(strings.TrimSpace(k))
		name := canonicalName(key)
		if name == "" || strings.TrimSpace(values[k]) == "" {
			continue
		}
		// The canonical key wins over any alias.
		if _, taken := canonical[name]; taken && key != name {
			continue
		}
		canonical[name] = values[k]
	}
	return rawSource{fields: identity.NewFields(canonical)}
}

func (s rawSource) Kind() SourceKind { return SourceRawMap }
func (rawSource) sealed()            {}

func (s rawSource) IdentityFields() identity.Fields {
	return identity.NewFields(s.fields)
}
