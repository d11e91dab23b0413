package mrz

import (
	"docverify/pkg/identity"
)

// Format is the ICAO 9303 MRZ layout.
type Format string

const (
	FormatTD1     Format = "TD1"
	FormatTD2     Format = "TD2"
	FormatTD3     Format = "TD3"
	FormatUnknown Format = "unknown"
)

// Failure classifies a structural parse failure. Safe to log.
type Failure string

const (
	FailureNoLines       Failure = "no_lines"
	FailureUnknownFormat Failure = "unknown_format"
	FailureInternal      Failure = "internal"
)

func (f Failure) Error() string {
	return "mrz: " + string(f)
}

// Line is one MRZ line as used for parsing. Text is excluded from JSON.
type Line struct {
	Number         int    `json:"line_number"`
	RawText        string `json:"-"`
	CleanText      string `json:"-"`
	ExpectedLength int    `json:"expected_length"`
	IsValidLength  bool   `json:"is_valid_length"`
}

// CheckDigit is the outcome of one ICAO check digit verification.
// ValueChecked is for local debugging only and is never serialised.
type CheckDigit struct {
	FieldName    string `json:"field_name"`
	Expected     string `json:"expected"`
	Calculated   string `json:"calculated"`
	IsValid      bool   `json:"is_valid"`
	ValueChecked string `json:"-"`
}

// Record is the outcome of parsing one MRZ. A failed parse still returns a
// Record with Success false and Failure set.
type Record struct {
	Format          Format
	DocumentType    string
	DocumentSubtype string
	IssuingCountry  string
	DocumentNumber  string

	Surname     string
	GivenNames  string
	FullName    string
	Nationality string
	DateOfBirth string
	Sex         string
	ExpiryDate  string

	PersonalNumber string
	OptionalData1  string
	OptionalData2  string

	Lines               []Line
	CheckDigits         []CheckDigit
	AllCheckDigitsValid bool

	Confidence float64
	Success    bool
	Failure    Failure
}

// Err returns the structural failure, or nil for a successful parse.
func (r *Record) Err() error {
	if r.Success {
		return nil
	}
	return r.Failure
}

// ValidCheckDigits counts the check digits that verified.
func (r *Record) ValidCheckDigits() int {
	n := 0
	for _, cd := range r.CheckDigits {
		if cd.IsValid {
			n++
		}
	}
	return n
}

// IdentityFields projects the record onto the canonical identity schema.
func (r *Record) IdentityFields() identity.Fields {
	return identity.NewFields(map[string]string{
		identity.FullName:       r.FullName,
		identity.Surname:        r.Surname,
		identity.GivenNames:     r.GivenNames,
		identity.DateOfBirth:    r.DateOfBirth,
		identity.DocumentNumber: r.DocumentNumber,
		identity.ExpiryDate:     r.ExpiryDate,
		identity.Sex:            r.Sex,
		identity.Nationality:    r.Nationality,
	})
}
