package crossval

// Classification is the outcome of comparing one field.
type Classification string

const (
	MatchExact         Classification = "exact"
	MatchFuzzy         Classification = "fuzzy"
	MatchPartial       Classification = "partial"
	MatchMismatch      Classification = "mismatch"
	MatchMissingSource Classification = "missing_source"
	MatchMissingTarget Classification = "missing_target"
	MatchNotCompared   Classification = "not_compared"
)

// Compared reports whether the field took part in scoring.
func (c Classification) Compared() bool {
	switch c {
	case MatchExact, MatchFuzzy, MatchPartial, MatchMismatch:
		return true
	}
	return false
}

// Matched reports whether the field counts as agreeing for required-field
// checks.
func (c Classification) Matched() bool {
	return c == MatchExact || c == MatchFuzzy || c == MatchPartial
}

// FieldMatch is the per-field comparison outcome. It deliberately holds no
// field values.
type FieldMatch struct {
	FieldName      string         `json:"field_name"`
	Classification Classification `json:"classification"`
	Similarity     float64        `json:"similarity_score"`
	Weight         float64        `json:"weight"`
	Contribution   float64        `json:"contribution"`
}

// Failure classifies why a validation could not run.
type Failure string

const (
	FailureEmptySource Failure = "empty_source_fields"
	FailureEmptyOCR    Failure = "empty_ocr_fields"
	FailureInternal    Failure = "internal"
)

var failureMessages = map[Failure]string{
	FailureEmptySource: "no identity fields available from the document source",
	FailureEmptyOCR:    "no OCR fields supplied for comparison",
	FailureInternal:    "validation aborted on malformed input",
}

func (f Failure) Error() string {
	return "crossval: " + failureMessages[f]
}

// Result is the outcome of one cross-validation.
type Result struct {
	Source       SourceKind   `json:"source"`
	Score        float64      `json:"score"`
	IsValid      bool         `json:"is_valid"`
	Confidence   float64      `json:"confidence"`
	FieldMatches []FieldMatch `json:"field_matches"`

	ExactMatches   int `json:"exact_matches"`
	FuzzyMatches   int `json:"fuzzy_matches"`
	PartialMatches int `json:"partial_matches"`
	Mismatches     int `json:"mismatches"`
	MissingFields  int `json:"missing_fields"`
	ComparedFields int `json:"compared_fields"`

	RequiredFieldsSatisfied bool    `json:"required_fields_satisfied"`
	TrustContribution       float64 `json:"trust_contribution"`

	Success bool    `json:"success"`
	Failure Failure `json:"failure,omitempty"`
}

// Err returns the failure, or nil when the validation ran.
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	return r.Failure
}

// Match returns the FieldMatch for name.
func (r *Result) Match(name string) (FieldMatch, bool) {
	for _, m := range r.FieldMatches {
		if m.FieldName == name {
			return m, true
		}
	}
	return FieldMatch{}, false
}
