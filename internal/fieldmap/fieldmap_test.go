package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"casedesk/internal/domain"
)

func TestMap_PassportForApplicant(t *testing.T) {
	got := Map(map[string]string{
		"full_name":       "John Smith",
		"passport_number": "X123",
	}, domain.RoleApplicant, domain.KindPassport)

	assert.Equal(t, map[string]string{
		"applicant_full_name":       "John Smith",
		"applicant_first_name":      "John",
		"applicant_last_name":       "Smith",
		"applicant_passport_number": "X123",
	}, got)
}

func TestMap_PassportFullFieldSet(t *testing.T) {
	got := Map(map[string]string{
		"first_name":      "Maria",
		"last_name":       "Kowalska",
		"document_number": "AB998877",
		"date_of_issue":   "2019-03-01",
		"date_of_expiry":  "2029-03-01",
		"issuing_country": "Poland",
		"sex":             "F",
		"nationality":     "Polish",
	}, domain.RoleMother, domain.KindPassport)

	assert.Equal(t, "Maria", got["mother_first_name"])
	assert.Equal(t, "Kowalska", got["mother_last_name"])
	assert.Equal(t, "AB998877", got["mother_passport_number"])
	assert.Equal(t, "2019-03-01", got["mother_passport_issue_date"])
	assert.Equal(t, "2029-03-01", got["mother_passport_expiry_date"])
	assert.Equal(t, "Poland", got["mother_passport_issuing_country"])
	assert.Equal(t, "F", got["mother_sex"])
	assert.Equal(t, "Polish", got["mother_nationality"])
}

func TestMap_BirthCertificateAddsParentFields(t *testing.T) {
	got := Map(map[string]string{
		"full_name":      "Anna Nowak",
		"date_of_birth":  "1952-07-14",
		"father_name":    "Jan Nowak",
		"mother_name":    "Ewa Nowak",
		"birth_locality": "Krakow",
		"birth_country":  "Poland",
	}, domain.RolePGM, domain.KindBirthCertificate)

	assert.Equal(t, "Anna Nowak", got["pgm_full_name"])
	assert.Equal(t, "1952-07-14", got["pgm_date_of_birth"])
	assert.Equal(t, "Jan Nowak", got["pgm_father_name"])
	assert.Equal(t, "Ewa Nowak", got["pgm_mother_name"])
	assert.Equal(t, "Krakow", got["pgm_birth_locality"])
	assert.Equal(t, "Poland", got["pgm_birth_country"])
}

func TestMap_MarriageFieldsAreCaseGlobal(t *testing.T) {
	got := Map(map[string]string{
		"full_name":      "John Smith",
		"spouse_name":    "Jane Doe",
		"marriage_date":  "2001-06-30",
		"marriage_place": "Boston",
	}, domain.RoleApplicant, domain.KindMarriageCertificate)

	// Spouse and event fields carry no role prefix.
	assert.Equal(t, "Jane Doe", got["spouse_full_name"])
	assert.Equal(t, "2001-06-30", got["marriage_date"])
	assert.Equal(t, "Boston", got["marriage_place"])
	assert.Equal(t, "John Smith", got["applicant_full_name"])
}

func TestMap_UnknownKindUsesBaseTableOnly(t *testing.T) {
	got := Map(map[string]string{
		"full_name":       "Carlos Silva",
		"passport_number": "ZZ000",
	}, domain.RoleFather, domain.KindUnknown)

	assert.Equal(t, "Carlos Silva", got["father_full_name"])
	assert.NotContains(t, got, "father_passport_number")
}

func TestMap_NameSplitSkippedWhenSplitNamesPresent(t *testing.T) {
	got := Map(map[string]string{
		"full_name":  "Jose Maria Garcia Lopez",
		"first_name": "Jose Maria",
		"last_name":  "Garcia Lopez",
	}, domain.RoleApplicant, domain.KindUnknown)

	assert.Equal(t, "Jose Maria", got["applicant_first_name"])
	assert.Equal(t, "Garcia Lopez", got["applicant_last_name"])
}

func TestMap_EmptyValuesDropped(t *testing.T) {
	got := Map(map[string]string{
		"full_name":     "   ",
		"date_of_birth": "1990-01-01",
	}, domain.RoleChild1, domain.KindUnknown)

	assert.Equal(t, map[string]string{"child_1_date_of_birth": "1990-01-01"}, got)
}

func TestSplitFullName(t *testing.T) {
	cases := []struct {
		full  string
		first string
		last  string
	}{
		{"John Smith", "John", "Smith"},
		{"Madonna", "Madonna", ""},
		{"Anna van der Berg", "Anna van der", "Berg"}, // documented best-effort misparse
		{"  John   Smith  ", "John", "Smith"},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := SplitFullName(tc.full)
		assert.Equal(t, tc.first, first, "full=%q", tc.full)
		assert.Equal(t, tc.last, last, "full=%q", tc.full)
	}
}
