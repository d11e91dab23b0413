// Package crossval cross-validates identity fields read from a machine-readable
// source (AAMVA barcode, MRZ, or a raw map) against an independently produced
// OCR field map, and turns the comparison into a score, a validity decision,
// a confidence value and a bounded trust score contribution.
//
// Validation is pure and deterministic. Field values are used only while
// comparing and never appear in a Result.
package crossval

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"docverify/pkg/identity"
)

// Valuer is implemented by wrapped OCR values that carry extra metadata.
type Valuer interface {
	Value() string
}

// Validator compares identity sources with OCR output. Safe for concurrent use.
type Validator struct {
	cfg Config
}

// New builds a Validator from cfg.
func New(cfg Config) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Validator{cfg: cfg.clone()}, nil
}

// MustNew builds a Validator, panicking if cfg is invalid.
// Use only in tests or with DefaultConfig.
func MustNew(cfg Config) *Validator {
	v, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return v
}

// Config returns a copy of the validator configuration.
func (v *Validator) Config() Config {
	return v.cfg.clone()
}

// Validate compares src against the OCR field map. OCR values may be strings,
// Valuer implementations, or decoded JSON objects with a "value" member.
// It never panics: a fault while reading the inputs yields a failed Result.
func (v *Validator) Validate(src Source, ocr map[string]any) (res *Result) {
	res = &Result{FieldMatches: []FieldMatch{}}
	defer func() {
		if p := recover(); p != nil {
			res = &Result{FieldMatches: []FieldMatch{}, Failure: FailureInternal}
		}
	}()
	if src == nil {
		res.Failure = FailureEmptySource
		return res
	}
	res.Source = src.Kind()

	source := normalizeSource(src.IdentityFields())
	if len(source) == 0 {
		res.Failure = FailureEmptySource
		return res
	}
	target := normalizeOCR(ocr)
	if len(target) == 0 {
		res.Failure = FailureEmptyOCR
		return res
	}

	names := make([]string, 0, len(source))
	for name := range source {
		names = append(names, name)
	}
	sort.Strings(names)

	consumed := make(map[string]struct{}, len(target))
	for _, name := range names {
		weight := v.weight(name)
		if weight <= 0 {
			res.FieldMatches = append(res.FieldMatches, FieldMatch{FieldName: name, Classification: MatchNotCompared})
			continue
		}
		key, ok := resolve(name, target)
		if !ok {
			res.FieldMatches = append(res.FieldMatches, FieldMatch{FieldName: name, Classification: MatchMissingTarget, Weight: weight})
			continue
		}
		consumed[key] = struct{}{}

		class, sim := v.compare(name, source[name], target[key])
		contribution := sim * weight
		if class == MatchExact {
			contribution += v.cfg.ExactMatchBonus * weight
		}
		res.FieldMatches = append(res.FieldMatches, FieldMatch{
			FieldName:      name,
			Classification: class,
			Similarity:     sim,
			Weight:         weight,
			Contribution:   contribution,
		})
	}

	// Canonical fields the OCR stage read but the document source lacks.
	for _, name := range identity.Schema() {
		if _, ok := source[name]; ok {
			continue
		}
		key, ok := resolve(name, target)
		if !ok {
			continue
		}
		if _, used := consumed[key]; used {
			continue
		}
		res.FieldMatches = append(res.FieldMatches, FieldMatch{FieldName: name, Classification: MatchMissingSource, Weight: v.weight(name)})
	}

	v.score(res)
	res.Success = true
	return res
}

func (v *Validator) weight(name string) float64 {
	if w, ok := v.cfg.FieldWeights[name]; ok {
		return w
	}
	return v.cfg.DefaultWeight
}

// score fills the counters, aggregate score, decision and trust contribution.
func (v *Validator) score(res *Result) {
	var sumWeight, sumContribution float64
	for _, m := range res.FieldMatches {
		switch m.Classification {
		case MatchExact:
			res.ExactMatches++
		case MatchFuzzy:
			res.FuzzyMatches++
		case MatchPartial:
			res.PartialMatches++
		case MatchMismatch:
			res.Mismatches++
		case MatchMissingSource, MatchMissingTarget:
			res.MissingFields++
		}
		if m.Classification.Compared() {
			res.ComparedFields++
			sumWeight += m.Weight
			sumContribution += m.Contribution
		}
	}

	if sumWeight > 0 {
		res.Score = clamp(sumContribution / sumWeight)
	}

	res.RequiredFieldsSatisfied = true
	for _, name := range v.cfg.RequiredFields {
		m, ok := res.Match(name)
		if !ok || !m.Classification.Matched() {
			res.RequiredFieldsSatisfied = false
			break
		}
	}

	matched := res.ExactMatches + res.FuzzyMatches
	res.IsValid = matched >= v.cfg.MinMatchingFields &&
		res.RequiredFieldsSatisfied &&
		res.Score >= v.cfg.StringSimilarityThreshold

	if res.ComparedFields > 0 {
		n := float64(res.ComparedFields)
		res.Confidence = clamp(0.6*float64(matched)/n +
			0.3*float64(res.ExactMatches)/n +
			0.1*(1-float64(res.Mismatches)/n))
	}

	res.TrustContribution = v.trustContribution(res)
}

func (v *Validator) trustContribution(res *Result) float64 {
	if !res.IsValid {
		return v.cfg.InvalidPenalty
	}
	bonus := 0.0
	if res.Confidence > 0.9 {
		bonus = 0.02
	}
	return min(res.Score*v.cfg.CrossValidationWeight+bonus, v.cfg.MaxScoreContribution)
}

func normalizeSource(fields identity.Fields) map[string]string {
	out := make(map[string]string, len(fields))
	for k, val := range fields {
		k = strings.ToLower(strings.TrimSpace(k))
		if val = strings.TrimSpace(val); k != "" && val != "" {
			out[k] = val
		}
	}
	return out
}

// normalizeOCR lower-cases keys and unwraps values, dropping blanks and
// unsupported value types.
func normalizeOCR(ocr map[string]any) map[string]string {
	out := make(map[string]string, len(ocr))
	for k, raw := range ocr {
		k = strings.ToLower(strings.TrimSpace(k))
		val, ok := stringValue(raw)
		if !ok || k == "" {
			continue
		}
		if val = strings.TrimSpace(val); val != "" {
			out[k] = val
		}
	}
	return out
}

func stringValue(raw any) (string, bool) {
	switch val := raw.(type) {
	case string:
		return val, true
	case Valuer:
		if isNil(val) {
			return "", false
		}
		return val.Value(), true
	case map[string]any:
		return stringValue(val["value"])
	case map[string]string:
		s, ok := val["value"]
		return s, ok
	case fmt.Stringer:
		if isNil(val) {
			return "", false
		}
		return val.String(), true
	default:
		return "", false
	}
}

// isNil reports whether v wraps a nil pointer, map, slice, func or interface.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func clamp(x float64) float64 {
	return max(0, min(1, x))
}
