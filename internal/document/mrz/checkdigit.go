package mrz

import (
	"strconv"
	"strings"
)

var checkWeights = [3]int{7, 3, 1}

// CharValue maps an MRZ character to its ICAO value: '<' is 0, digits are
// 0-9 and letters A-Z are 10-35. Anything else counts as 0.
func CharValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 0
	}
}

// ComputeCheckDigit returns the ICAO 9303 check digit of value: each
// character value is weighted 7, 3, 1 in turn, and the sum is taken modulo 10.
func ComputeCheckDigit(value string) int {
	sum := 0
	for i := 0; i < len(value); i++ {
		sum += CharValue(value[i]) * checkWeights[i%3]
	}
	return sum % 10
}

// verify checks value against the expected check character. A filler
// expected character stands for zero.
func verify(field, value string, expected byte) CheckDigit {
	calculated := strconv.Itoa(ComputeCheckDigit(value))
	exp := string(expected)
	if expected == fillerChar {
		exp = "0"
	}
	return CheckDigit{
		FieldName:    field,
		Expected:     string(expected),
		Calculated:   calculated,
		IsValid:      exp == calculated,
		ValueChecked: value,
	}
}

// FormatDate converts an MRZ YYMMDD date to YYYY-MM-DD. Years below 50 are
// placed in the 2000s, the rest in the 1900s. Input that is not six digits is
// returned unchanged.
func FormatDate(yymmdd string) string {
	if len(yymmdd) != 6 || strings.Trim(yymmdd, "0123456789") != "" {
		return yymmdd
	}
	yy, _ := strconv.Atoi(yymmdd[:2])
	year := 1900 + yy
	if yy < 50 {
		year = 2000 + yy
	}
	return strconv.Itoa(year) + "-" + yymmdd[2:4] + "-" + yymmdd[4:6]
}
