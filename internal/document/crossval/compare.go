package crossval

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	pstrings "docverify/pkg/platform/strings"
)

var addressAbbreviations = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bST\b`), "STREET"},
	{regexp.MustCompile(`\bAVE\b`), "AVENUE"},
	{regexp.MustCompile(`\bRD\b`), "ROAD"},
	{regexp.MustCompile(`\bDR\b`), "DRIVE"},
	{regexp.MustCompile(`\bAPT\b`), "APARTMENT"},
}

var datePatterns = []struct {
	pattern *regexp.Regexp
	// indexes of year and the two remaining components in the submatch
	year, a, b int
	// year must look like 18xx-20xx for the pattern to apply
	plausibleYear bool
}{
	{regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`), 1, 2, 3, true},
	{regexp.MustCompile(`^(\d{2})(\d{2})(\d{4})$`), 3, 1, 2, false},
	{regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`), 1, 2, 3, false},
}

var nameFields = map[string]struct{}{
	"full_name":   {},
	"surname":     {},
	"given_names": {},
}

func isDateField(name string) bool {
	return strings.Contains(name, "date") || name == "dob"
}

func isSexField(name string) bool {
	return name == "sex" || name == "gender"
}

func isAddressField(name string) bool {
	return strings.Contains(name, "address")
}

func isNameField(name string) bool {
	_, ok := nameFields[name]
	return ok
}

// normalize prepares a value for comparison under the field's rules.
func (v *Validator) normalize(field, value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if v.cfg.CaseInsensitive {
		value = strings.ToUpper(value)
	}

	switch {
	case isDateField(field):
		value = strings.NewReplacer("-", "", "/", "", ".", "").Replace(value)
	case isSexField(field):
		switch strings.ToUpper(value) {
		case "MALE", "M", "1":
			value = "M"
		case "FEMALE", "F", "2":
			value = "F"
		}
	case isAddressField(field):
		value = strings.ToUpper(value)
		value = strings.NewReplacer(",", " ", ".", " ").Replace(value)
		for _, abbr := range addressAbbreviations {
			value = abbr.pattern.ReplaceAllString(value, abbr.replacement)
		}
		value = strings.Join(strings.Fields(value), " ")
	}
	return value
}

// compare classifies one source/OCR value pair.
func (v *Validator) compare(field, a, b string) (Classification, float64) {
	na, nb := v.normalize(field, a), v.normalize(field, b)
	if na == nb {
		return MatchExact, 1.0
	}

	if isDateField(field) && v.cfg.FlexibleDates && sameDateComponents(na, nb) {
		return MatchExact, 1.0
	}

	threshold := v.cfg.StringSimilarityThreshold
	if isNameField(field) && v.cfg.FuzzyMatching {
		if sim := pstrings.BigramJaccard(na, nb); sim >= threshold {
			return MatchFuzzy, sim
		}
		if d := pstrings.Levenshtein(na, nb); d <= v.cfg.MaxEditDistance {
			longest := max(len([]rune(na)), len([]rune(nb)))
			return MatchFuzzy, 1 - float64(d)/float64(longest)
		}
	}

	sim := pstrings.BigramJaccard(na, nb)
	switch {
	case sim >= threshold:
		return MatchFuzzy, sim
	case sim >= 0.5:
		return MatchPartial, sim
	default:
		return MatchMismatch, sim
	}
}

// extractDate returns the (year, x, y) components of an 8-digit or ISO date.
// Day and month order is not resolved for the MMDDYYYY/DDMMYYYY form.
func extractDate(s string) ([3]int, bool) {
	for _, p := range datePatterns {
		m := p.pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[p.year])
		if p.plausibleYear && (year < 1800 || year > 2099) {
			continue
		}
		a, _ := strconv.Atoi(m[p.a])
		b, _ := strconv.Atoi(m[p.b])
		return [3]int{year, a, b}, true
	}
	return [3]int{}, false
}

// sameDateComponents compares the sorted date components of both values.
// Sorting makes the match tolerant to day/month transposition.
func sameDateComponents(a, b string) bool {
	da, okA := extractDate(a)
	db, okB := extractDate(b)
	if !okA || !okB {
		return false
	}
	sa, sb := da[:], db[:]
	sort.Ints(sa)
	sort.Ints(sb)
	return sa[0] == sb[0] && sa[1] == sb[1] && sa[2] == sb[2]
}
