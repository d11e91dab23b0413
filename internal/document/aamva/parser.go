// Package aamva parses AAMVA DL/ID card design payloads, the text carried in the
// PDF417 barcode on North American driver licences and ID cards.
//
// Parsing is pure: the input is the decoded barcode payload and the output is a
// fresh Record. Nothing is logged here; callers decide what to do with failures
// and only ever log the Failure kind.
package aamva

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	headerPattern  = regexp.MustCompile(`@[\s\S]*?(ANSI|AAMVA)\s*(\d{6})(\d{2})(\d{2})`)
	elementPattern = regexp.MustCompile(`([A-Z]{2,3})(.*)`)
	subfilePattern = regexp.MustCompile(`(?:DL|ID)([A-Z]{3})`)
	digitsPattern  = regexp.MustCompile(`^\d{8}$`)
)

// dateLayouts are tried in order: US MMDDCCYY first, then Canadian CCYYMMDD.
var dateLayouts = []string{"01022006", "20060102"}

// Parse decodes an AAMVA payload into a Record. It never panics.
func Parse(payload []byte) (rec *Record) {
	rec = &Record{fields: make(map[string]Field)}
	defer func() {
		if p := recover(); p != nil {
			*rec = Record{Failure: FailureInternal, fields: make(map[string]Field)}
		}
	}()

	if strings.TrimSpace(string(payload)) == "" {
		rec.Failure = FailureEmptyPayload
		return rec
	}

	text := decode(payload)
	parseHeader(text, rec)

	body := text
	if idx := strings.IndexByte(text, '@'); idx >= 0 {
		body = text[idx:]
	}
	for _, line := range splitLines(body) {
		if isHeaderLine(line) {
			line = headerSubfile(line)
			if line == "" {
				continue
			}
		} else {
			line = stripSubfileDesignator(line)
		}
		for _, m := range elementPattern.FindAllStringSubmatch(line, -1) {
			storeElement(rec, m[1], m[2])
		}
	}

	if len(rec.fields) == 0 {
		rec.Failure = FailureNoElements
		return rec
	}

	mapFields(rec)
	rec.Confidence = confidence(rec)
	rec.Success = true
	return rec
}

// decode reads the payload as UTF-8, falling back to ISO 8859-1.
func decode(payload []byte) string {
	if utf8.Valid(payload) {
		return string(payload)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(payload)
	if err != nil {
		return string(payload)
	}
	return string(out)
}

func parseHeader(text string, rec *Record) {
	m := headerPattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	rec.IssuerID = m[2]
	rec.AAMVAVersion, _ = strconv.Atoi(m[3])
	rec.JurisdictionVersion, _ = strconv.Atoi(m[4])
}

func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\x1e'
	})
}

func isHeaderLine(line string) bool {
	return strings.Contains(line, "@") ||
		strings.Contains(line, "ANSI") ||
		strings.Contains(line, "AAMVA")
}

// headerSubfile returns the first element of a subfile that starts on the
// header line, or "" when the header line carries no element.
func headerSubfile(line string) string {
	for _, loc := range subfilePattern.FindAllStringSubmatchIndex(line, -1) {
		if _, known := elements[line[loc[2]:loc[3]]]; known {
			return line[loc[2]:]
		}
	}
	return ""
}

// stripSubfileDesignator drops a leading "DL"/"ID" subfile type when it is
// glued to a known element code.
func stripSubfileDesignator(line string) string {
	line = strings.TrimSpace(line)
	if len(line) < 5 {
		return line
	}
	if prefix := line[:2]; prefix == "DL" || prefix == "ID" {
		if _, known := elements[line[2:5]]; known {
			return line[2:]
		}
	}
	return line
}

func storeElement(rec *Record, code, raw string) {
	def, known := elements[code]
	if !known {
		return
	}
	value := cleanValue(raw)
	if value == "" {
		return
	}
	rec.fields[code] = Field{
		Code:        code,
		Value:       value,
		Description: def.description,
		IsRequired:  def.required,
	}
}

func cleanValue(raw string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	return strings.Join(strings.Fields(stripped), " ")
}

func (r *Record) value(codes ...string) string {
	for _, c := range codes {
		if f, ok := r.fields[c]; ok {
			return f.Value
		}
	}
	return ""
}

func mapFields(rec *Record) {
	rec.DocumentNumber = rec.value("DAQ")
	rec.DocumentDiscriminator = rec.value("DCF")
	rec.VehicleClass = rec.value("DCA", "DCM")

	rec.LastName = rec.value("DCS", "DBN", "DAB")
	rec.FirstName = rec.value("DAC", "DCT", "DBP")
	rec.MiddleName = rec.value("DAD")
	rec.Suffix = rec.value("DCU", "DAE")

	// Legacy given names may carry the middle name after a comma.
	if _, fromDAC := rec.fields["DAC"]; !fromDAC && strings.Contains(rec.FirstName, ",") {
		first, middle, _ := strings.Cut(rec.FirstName, ",")
		rec.FirstName = strings.TrimSpace(first)
		if rec.MiddleName == "" {
			rec.MiddleName = strings.TrimSpace(middle)
		}
	}
	if full := rec.value("DAA"); full != "" && (rec.LastName == "" || rec.FirstName == "") {
		fillFromFullName(rec, full)
	}

	rec.FullName = joinNonEmpty(" ", rec.FirstName, rec.MiddleName, rec.LastName, rec.Suffix)
	if rec.FullName == "" {
		rec.FullName = joinNonEmpty(" ", strings.Split(rec.value("DAA"), ",")...)
	}

	rec.DateOfBirth = parseDate(rec.value("DBB"))
	rec.IssueDate = parseDate(rec.value("DBD"))
	rec.ExpiryDate = parseDate(rec.value("DBA"))
	rec.Sex = normalizeSex(rec.value("DBC"))
	rec.EyeColor = rec.value("DAY")
	rec.Height = rec.value("DAU")

	rec.Street = rec.value("DAG")
	rec.Street2 = rec.value("DAH")
	rec.City = rec.value("DAI")
	rec.State = rec.value("DAJ")
	rec.PostalCode = normalizePostalCode(rec.value("DAK"))
	rec.Country = rec.value("DCG")
}

// fillFromFullName splits a legacy "LAST,FIRST,MIDDLE" name.
func fillFromFullName(rec *Record, full string) {
	parts := strings.Split(full, ",")
	if len(parts) < 2 {
		return
	}
	if rec.LastName == "" {
		rec.LastName = strings.TrimSpace(parts[0])
	}
	if rec.FirstName == "" {
		rec.FirstName = strings.TrimSpace(parts[1])
	}
	if rec.MiddleName == "" && len(parts) > 2 {
		rec.MiddleName = strings.TrimSpace(parts[2])
	}
}

// parseDate converts an 8-digit date to YYYY-MM-DD. Anything that does not
// parse is returned unchanged.
func parseDate(raw string) string {
	if !digitsPattern.MatchString(raw) {
		return raw
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

func normalizeSex(raw string) string {
	switch strings.ToUpper(raw) {
	case "1", "M":
		return "M"
	case "2", "F":
		return "F"
	case "9", "X":
		return "X"
	}
	return raw
}

func normalizePostalCode(raw string) string {
	compact := strings.ReplaceAll(raw, " ", "")
	if len(compact) == 9 && strings.HasSuffix(compact, "0000") && isDigits(compact) {
		return compact[:5]
	}
	return raw
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func confidence(rec *Record) float64 {
	present := 0
	for _, code := range criticalCodes {
		if _, ok := rec.fields[code]; ok {
			present++
		}
	}
	optional := 0
	for code := range rec.fields {
		if !isCritical(code) {
			optional++
		}
	}

	score := float64(present)/float64(len(criticalCodes)) + min(0.1, 0.02*float64(optional))
	if rec.DocumentNumber == "" {
		score -= 0.2
	}
	if rec.LastName == "" {
		score -= 0.15
	}
	if rec.DateOfBirth == "" {
		score -= 0.15
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
