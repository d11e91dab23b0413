package aamva

// element describes one AAMVA data element in the DL/ID card design standard.
type element struct {
	description string
	required    bool
}

// elements is the recognised code table. Codes outside it are ignored.
var elements = map[string]element{
	// Mandatory elements (AAMVA 2013+)
	"DCA": {"Jurisdiction-specific vehicle class", true},
	"DCB": {"Jurisdiction-specific restriction codes", true},
	"DCD": {"Jurisdiction-specific endorsement codes", true},
	"DBA": {"Document expiration date", true},
	"DCS": {"Customer family name", true},
	"DAC": {"Customer first name", true},
	"DAD": {"Customer middle name(s)", true},
	"DBD": {"Document issue date", true},
	"DBB": {"Date of birth", true},
	"DBC": {"Physical description - sex", true},
	"DAY": {"Physical description - eye color", true},
	"DAU": {"Physical description - height", true},
	"DAG": {"Address - street 1", true},
	"DAI": {"Address - city", true},
	"DAJ": {"Address - jurisdiction code", true},
	"DAK": {"Address - postal code", true},
	"DAQ": {"Customer ID number", true},
	"DCF": {"Document discriminator", true},
	"DCG": {"Country identification", true},
	"DDE": {"Family name truncation", true},
	"DDF": {"First name truncation", true},
	"DDG": {"Middle name truncation", true},

	// Optional elements
	"DAH": {"Address - street 2", false},
	"DAZ": {"Hair color", false},
	"DCI": {"Place of birth", false},
	"DCJ": {"Audit information", false},
	"DCK": {"Inventory control number", false},
	"DBN": {"Alias / AKA family name", false},
	"DBG": {"Alias / AKA given name", false},
	"DBS": {"Alias / AKA suffix name", false},
	"DCU": {"Name suffix", false},
	"DCE": {"Physical description - weight range", false},
	"DCL": {"Race / ethnicity", false},
	"DCM": {"Standard vehicle classification", false},
	"DCN": {"Standard endorsement code", false},
	"DCO": {"Standard restriction code", false},
	"DCP": {"Jurisdiction-specific vehicle classification description", false},
	"DCQ": {"Jurisdiction-specific endorsement code description", false},
	"DCR": {"Jurisdiction-specific restriction code description", false},
	"DDA": {"Compliance type", false},
	"DDB": {"Card revision date", false},
	"DDC": {"HAZMAT endorsement expiration date", false},
	"DDD": {"Limited duration document indicator", false},
	"DAW": {"Weight (pounds)", false},
	"DAX": {"Weight (kilograms)", false},
	"DDH": {"Under 18 until", false},
	"DDI": {"Under 19 until", false},
	"DDJ": {"Under 21 until", false},
	"DDK": {"Organ donor indicator", false},
	"DDL": {"Veteran indicator", false},

	// Legacy elements (AAMVA 2000-2009)
	"DAA": {"Customer full name", false},
	"DAB": {"Customer last name", false},
	"DAE": {"Customer name suffix", false},
	"DCT": {"Customer given names", false},
	"DBP": {"Alias / AKA given name (legacy)", false},
}

// criticalCodes drive the base confidence score.
var criticalCodes = []string{"DAQ", "DCS", "DAC", "DBB", "DBA", "DAG", "DAJ"}

func isCritical(code string) bool {
	for _, c := range criticalCodes {
		if c == code {
			return true
		}
	}
	return false
}
