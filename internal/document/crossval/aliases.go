package crossval

import (
	"docverify/pkg/identity"
)

// aliases lists the OCR field names accepted for each canonical field, in
// lookup order. The canonical name itself is always tried first.
var aliases = map[string][]string{
	identity.FullName:       {"name", "fullname", "holder_name"},
	identity.Surname:        {"last_name", "family_name", "lastname"},
	identity.GivenNames:     {"first_name", "given_name", "forenames", "firstname"},
	identity.DateOfBirth:    {"dob", "birth_date", "birthdate"},
	identity.DocumentNumber: {"doc_number", "license_number", "passport_number", "id_number"},
	identity.ExpiryDate:     {"expiration_date", "date_of_expiry", "exp_date"},
	identity.Sex:            {"gender"},
	identity.Nationality:    {"citizenship", "nationality_code"},
	identity.Address:        {"street_address", "full_address", "residence"},
}

var aliasIndex = func() map[string]string {
	idx := make(map[string]string)
	for canonical, names := range aliases {
		for _, n := range names {
			idx[n] = canonical
		}
	}
	return idx
}()

// canonicalName maps a lower-cased field name onto the canonical schema, or
// returns "" when it is unknown.
func canonicalName(name string) string {
	if identity.IsCanonical(name) {
		return name
	}
	return aliasIndex[name]
}

// resolve finds the target key holding the counterpart of field.
func resolve(field string, target map[string]string) (string, bool) {
	if _, ok := target[field]; ok {
		return field, true
	}
	for _, alias := range aliases[field] {
		if _, ok := target[alias]; ok {
			return alias, true
		}
	}
	return "", false
}
