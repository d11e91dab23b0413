// Package mrz parses ICAO 9303 machine-readable zones (TD1 ID cards, TD2
// cards and visas, TD3 passports) and verifies their check digits.
//
// The parser never corrects OCR confusions such as O/0 or I/1; that belongs to
// the recognition stage. Per-field problems lower the confidence, structural
// problems set Failure.
package mrz

import (
	"strings"
)

const (
	defaultMinLineLength = 28
	minAlphabetRatio     = 0.9
)

// Parser holds immutable parsing options. Safe for concurrent use.
type Parser struct {
	validateCheckDigits bool
	minLineLength       int
}

// Option configures a Parser.
type Option func(*Parser)

// WithCheckDigitValidation toggles check digit verification.
func WithCheckDigitValidation(enabled bool) Option {
	return func(p *Parser) {
		p.validateCheckDigits = enabled
	}
}

// WithMinLineLength sets the cleaned length below which a line is ignored.
func WithMinLineLength(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.minLineLength = n
		}
	}
}

// NewParser builds a Parser. Check digit validation is on by default.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		validateCheckDigits: true,
		minLineLength:       defaultMinLineLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses text with the default Parser.
func Parse(text string) *Record {
	return defaultParser.Parse(text)
}

// Parse extracts an MRZ from text. It never panics.
func (p *Parser) Parse(text string) (rec *Record) {
	rec = &Record{Format: FormatUnknown, AllCheckDigitsValid: true}
	defer func() {
		if r := recover(); r != nil {
			*rec = Record{Format: FormatUnknown, Failure: FailureInternal}
		}
	}()

	raw, clean := p.candidateLines(text)
	if len(clean) == 0 {
		rec.Failure = FailureNoLines
		return rec
	}

	rec.Format = DetectFormat(clean)
	l, ok := layoutFor(rec.Format)
	if !ok {
		rec.Failure = FailureUnknownFormat
		return rec
	}

	fitted := make([]string, l.lines)
	for i := 0; i < l.lines; i++ {
		fitted[i] = fit(clean[i], l.width)
		rec.Lines = append(rec.Lines, Line{
			Number:         i + 1,
			RawText:        raw[i],
			CleanText:      clean[i],
			ExpectedLength: l.width,
			IsValidLength:  len(clean[i]) == l.width,
		})
	}

	var checks []CheckDigit
	switch rec.Format {
	case FormatTD1:
		checks = parseTD1(fitted[0], fitted[1], fitted[2], rec)
	case FormatTD2:
		checks = parseTD2(fitted[0], fitted[1], rec)
	case FormatTD3:
		checks = parseTD3(fitted[0], fitted[1], rec)
	}
	if p.validateCheckDigits {
		rec.CheckDigits = checks
	}
	for _, cd := range rec.CheckDigits {
		rec.AllCheckDigitsValid = rec.AllCheckDigitsValid && cd.IsValid
	}

	rec.FullName = fullName(rec.GivenNames, rec.Surname)
	rec.Confidence = confidence(rec)
	rec.Success = true
	return rec
}

// candidateLines keeps input lines that look like MRZ text, returning the
// trimmed originals alongside their cleaned form.
func (p *Parser) candidateLines(text string) (raw, clean []string) {
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		compact := strings.ToUpper(strings.ReplaceAll(line, " ", ""))
		cleaned := CleanLine(line)
		if len(cleaned) < p.minLineLength {
			continue
		}
		if float64(len(cleaned)) < minAlphabetRatio*float64(len([]rune(compact))) {
			continue
		}
		raw = append(raw, line)
		clean = append(clean, cleaned)
	}
	return raw, clean
}

// CleanLine uppercases line, drops spaces and keeps only A-Z, 0-9 and '<'.
func CleanLine(line string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(line) {
		if isAlphabet(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlphabet(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == fillerChar
}

func fullName(given, surname string) string {
	switch {
	case given != "" && surname != "":
		return given + " " + surname
	case given != "":
		return given
	default:
		return surname
	}
}

func confidence(rec *Record) float64 {
	validLines := 0
	for _, l := range rec.Lines {
		if l.IsValidLength {
			validLines++
		}
	}
	lineScore := 0.0
	if len(rec.Lines) > 0 {
		lineScore = float64(validLines) / float64(len(rec.Lines))
	}

	checkScore := 0.5
	if len(rec.CheckDigits) > 0 {
		checkScore = float64(rec.ValidCheckDigits()) / float64(len(rec.CheckDigits))
	}

	bonus := 0.0
	for _, v := range []string{rec.DocumentNumber, rec.Surname, rec.DateOfBirth} {
		if v != "" {
			bonus += 0.2
		}
	}
	for _, v := range []string{rec.ExpiryDate, rec.Nationality} {
		if v != "" {
			bonus += 0.1
		}
	}

	score := 0.3*lineScore + 0.4*checkScore + 0.3*min(1, bonus)
	return max(0, min(1, score))
}
