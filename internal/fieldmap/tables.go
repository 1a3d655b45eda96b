package fieldmap

import "casedesk/internal/domain"

// rolePrefixes maps a person-role to the case-record attribute prefix its
// document data lands under.
var rolePrefixes = map[domain.PersonRole]string{
	domain.RoleApplicant: "applicant",
	domain.RoleSpouse:    "spouse",
	domain.RoleFather:    "father",
	domain.RoleMother:    "mother",
	domain.RolePGF:       "pgf",
	domain.RolePGM:       "pgm",
	domain.RoleMGF:       "mgf",
	domain.RoleMGM:       "mgm",
	domain.RoleChild1:    "child_1",
	domain.RoleChild2:    "child_2",
	domain.RoleChild3:    "child_3",
	domain.RoleChild4:    "child_4",
	domain.RoleChild5:    "child_5",
}

// baseFields maps extraction field names common to all document kinds to
// role-prefixed case-record suffixes.
var baseFields = map[string]string{
	"full_name":      "full_name",
	"name":           "full_name",
	"first_name":     "first_name",
	"given_names":    "first_name",
	"last_name":      "last_name",
	"surname":        "last_name",
	"date_of_birth":  "date_of_birth",
	"birth_date":     "date_of_birth",
	"place_of_birth": "place_of_birth",
	"birth_place":    "place_of_birth",
}

// kindFields maps extraction field names specific to one document kind to
// role-prefixed suffixes.
var kindFields = map[domain.DocumentKind]map[string]string{
	domain.KindBirthCertificate: {
		"father_name":      "father_name",
		"father_full_name": "father_name",
		"mother_name":      "mother_name",
		"mother_full_name": "mother_name",
		"birth_locality":   "birth_locality",
		"birth_country":    "birth_country",
	},
	domain.KindPassport: {
		"passport_number":  "passport_number",
		"document_number":  "passport_number",
		"issue_date":       "passport_issue_date",
		"date_of_issue":    "passport_issue_date",
		"expiry_date":      "passport_expiry_date",
		"date_of_expiry":   "passport_expiry_date",
		"issuing_country":  "passport_issuing_country",
		"sex":              "sex",
		"nationality":      "nationality",
	},
	domain.KindDeathCertificate: {
		"date_of_death":  "date_of_death",
		"death_date":     "date_of_death",
		"place_of_death": "place_of_death",
	},
	domain.KindNaturalization: {
		"certificate_number":   "naturalization_number",
		"naturalization_date":  "naturalization_date",
		"naturalization_court": "naturalization_court",
	},
	domain.KindMilitaryRecord: {
		"service_number": "military_service_number",
		"service_branch": "military_branch",
		"service_start":  "military_service_start",
		"service_end":    "military_service_end",
	},
}

// globalFields maps marriage-event extraction fields to unprefixed,
// case-global record fields. A marriage belongs to the case, not to one
// person-role, so no role prefix is applied.
var globalFields = map[domain.DocumentKind]map[string]string{
	domain.KindMarriageCertificate: {
		"spouse_name":       "spouse_full_name",
		"spouse_full_name":  "spouse_full_name",
		"marriage_date":     "marriage_date",
		"date_of_marriage":  "marriage_date",
		"marriage_place":    "marriage_place",
		"place_of_marriage": "marriage_place",
	},
}
