package aamva

import (
	"sort"
	"strings"

	"docverify/pkg/identity"
)

// Failure classifies a structural parse failure. Values are fixed strings and
// never carry payload content, so they are safe to log.
type Failure string

const (
	FailureEmptyPayload Failure = "empty_payload"
	FailureNoElements   Failure = "no_elements"
	FailureInternal     Failure = "internal"
)

func (f Failure) Error() string {
	return "aamva: " + string(f)
}

// Field is one parsed data element.
type Field struct {
	Code        string
	Value       string
	Description string
	IsRequired  bool
}

// Record is the outcome of parsing one PDF417 payload. A failed parse still
// returns a Record with Success false and Failure set.
type Record struct {
	IssuerID            string
	AAMVAVersion        int
	JurisdictionVersion int

	DocumentNumber        string
	DocumentDiscriminator string
	VehicleClass          string

	FirstName  string
	MiddleName string
	LastName   string
	Suffix     string
	FullName   string

	DateOfBirth string
	IssueDate   string
	ExpiryDate  string
	Sex         string
	EyeColor    string
	Height      string

	Street     string
	Street2    string
	City       string
	State      string
	PostalCode string
	Country    string

	Confidence float64
	Success    bool
	Failure    Failure

	fields map[string]Field
}

// Err returns the structural failure, or nil for a successful parse.
func (r *Record) Err() error {
	if r.Success {
		return nil
	}
	return r.Failure
}

// Field returns the element stored under code.
func (r *Record) Field(code string) (Field, bool) {
	f, ok := r.fields[code]
	return f, ok
}

// Codes returns the parsed element codes in lexical order.
func (r *Record) Codes() []string {
	codes := make([]string, 0, len(r.fields))
	for c := range r.fields {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// FieldCount returns the number of parsed elements.
func (r *Record) FieldCount() int {
	return len(r.fields)
}

// Address joins the postal address parts into a single line.
func (r *Record) Address() string {
	street := joinNonEmpty(" ", r.Street, r.Street2)
	region := joinNonEmpty(" ", r.State, r.PostalCode)
	return joinNonEmpty(", ", street, r.City, region)
}

// IdentityFields projects the record onto the canonical identity schema.
func (r *Record) IdentityFields() identity.Fields {
	return identity.NewFields(map[string]string{
		identity.FullName:       r.FullName,
		identity.Surname:        r.LastName,
		identity.GivenNames:     joinNonEmpty(" ", r.FirstName, r.MiddleName),
		identity.DateOfBirth:    r.DateOfBirth,
		identity.DocumentNumber: r.DocumentNumber,
		identity.ExpiryDate:     r.ExpiryDate,
		identity.Sex:            r.Sex,
		identity.Address:        r.Address(),
	})
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
