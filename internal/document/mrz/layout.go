package mrz

import (
	"strings"
)

const fillerChar = '<'

type layout struct {
	lines int
	width int
	// detection range for the cleaned first line
	minLen, maxLen int
}

// Detection order matters: TD1 is only chosen with three lines.
var layouts = []struct {
	format Format
	layout
}{
	{FormatTD1, layout{lines: 3, width: 30, minLen: 28, maxLen: 32}},
	{FormatTD2, layout{lines: 2, width: 36, minLen: 34, maxLen: 38}},
	{FormatTD3, layout{lines: 2, width: 44, minLen: 42, maxLen: 46}},
}

// DetectFormat picks the MRZ layout from the line count and the cleaned
// length of the first line.
func DetectFormat(lines []string) Format {
	if len(lines) == 0 {
		return FormatUnknown
	}
	first := len(lines[0])
	for _, l := range layouts {
		if len(lines) >= l.lines && first >= l.minLen && first <= l.maxLen {
			return l.format
		}
	}
	return FormatUnknown
}

func layoutFor(f Format) (layout, bool) {
	for _, l := range layouts {
		if l.format == f {
			return l.layout, true
		}
	}
	return layout{}, false
}

// fit pads line with filler to width, or truncates it.
func fit(line string, width int) string {
	if len(line) >= width {
		return line[:width]
	}
	return line + strings.Repeat(string(fillerChar), width-len(line))
}

// stripFiller removes filler from a fixed-width sub-field. Filler-only fields
// become empty; embedded filler becomes a single space.
func stripFiller(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == fillerChar }), " ")
}

// splitNames splits the name field on the first "<<" into surname and given
// names, turning the remaining filler into spaces.
func splitNames(field string) (surname, given string) {
	primary, secondary, _ := strings.Cut(field, "<<")
	return stripFiller(primary), stripFiller(secondary)
}

func normalizeSex(c byte) string {
	switch c {
	case 'M', 'F', 'X':
		return string(c)
	}
	return ""
}

func parseTD1(l1, l2, l3 string, rec *Record) []CheckDigit {
	rec.DocumentType = stripFiller(l1[0:1])
	rec.DocumentSubtype = stripFiller(l1[1:2])
	rec.IssuingCountry = stripFiller(l1[2:5])

	docNumber, docCheck, optional := l1[5:14], l1[14], l1[15:30]
	if docCheck == fillerChar {
		// Long document number: the overflow and its check digit sit at
		// the start of the optional data, terminated by filler.
		end := strings.IndexByte(optional, fillerChar)
		if end < 0 {
			end = len(optional)
		}
		if end > 0 {
			docNumber += optional[:end-1]
			docCheck = optional[end-1]
			optional = optional[end:]
		}
	}
	rec.DocumentNumber = stripFiller(docNumber)
	rec.OptionalData1 = stripFiller(optional)

	rec.DateOfBirth = FormatDate(l2[0:6])
	rec.Sex = normalizeSex(l2[7])
	rec.ExpiryDate = FormatDate(l2[8:14])
	rec.Nationality = stripFiller(l2[15:18])
	rec.OptionalData2 = stripFiller(l2[18:29])

	rec.Surname, rec.GivenNames = splitNames(l3[0:30])

	return []CheckDigit{
		verify("document_number", docNumber, docCheck),
		verify("date_of_birth", l2[0:6], l2[6]),
		verify("expiry_date", l2[8:14], l2[14]),
		verify("composite", l1[5:30]+l2[0:7]+l2[8:15]+l2[18:29], l2[29]),
	}
}

func parseTD2(l1, l2 string, rec *Record) []CheckDigit {
	rec.DocumentType = stripFiller(l1[0:1])
	rec.DocumentSubtype = stripFiller(l1[1:2])
	rec.IssuingCountry = stripFiller(l1[2:5])
	rec.Surname, rec.GivenNames = splitNames(l1[5:36])

	rec.DocumentNumber = stripFiller(l2[0:9])
	rec.Nationality = stripFiller(l2[10:13])
	rec.DateOfBirth = FormatDate(l2[13:19])
	rec.Sex = normalizeSex(l2[20])
	rec.ExpiryDate = FormatDate(l2[21:27])
	rec.OptionalData1 = stripFiller(l2[28:35])

	return []CheckDigit{
		verify("document_number", l2[0:9], l2[9]),
		verify("date_of_birth", l2[13:19], l2[19]),
		verify("expiry_date", l2[21:27], l2[27]),
		verify("composite", l2[0:10]+l2[13:20]+l2[21:35], l2[35]),
	}
}

func parseTD3(l1, l2 string, rec *Record) []CheckDigit {
	rec.DocumentType = stripFiller(l1[0:1])
	rec.DocumentSubtype = stripFiller(l1[1:2])
	rec.IssuingCountry = stripFiller(l1[2:5])
	rec.Surname, rec.GivenNames = splitNames(l1[5:44])

	rec.DocumentNumber = stripFiller(l2[0:9])
	rec.Nationality = stripFiller(l2[10:13])
	rec.DateOfBirth = FormatDate(l2[13:19])
	rec.Sex = normalizeSex(l2[20])
	rec.ExpiryDate = FormatDate(l2[21:27])
	rec.PersonalNumber = stripFiller(l2[28:42])

	return []CheckDigit{
		verify("document_number", l2[0:9], l2[9]),
		verify("date_of_birth", l2[13:19], l2[19]),
		verify("expiry_date", l2[21:27], l2[27]),
		verify("personal_number", l2[28:42], l2[42]),
		verify("composite", l2[0:10]+l2[13:20]+l2[21:43], l2[43]),
	}
}
