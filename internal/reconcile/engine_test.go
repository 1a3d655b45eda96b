package reconcile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casedesk/internal/domain"
)

func TestBuildPlan_EmptyFieldsAreWrittenDirectly(t *testing.T) {
	plan := BuildPlan(Input{
		CaseID:     uuid.New(),
		DocumentID: uuid.New(),
		Current:    map[string]string{},
		Incoming: map[string]string{
			"applicant_first_name":      "John",
			"applicant_last_name":       "Smith",
			"applicant_passport_number": "X123",
		},
		Confidence: 0.92,
	})

	assert.Equal(t, map[string]string{
		"applicant_first_name":      "John",
		"applicant_last_name":       "Smith",
		"applicant_passport_number": "X123",
	}, plan.Writes)
	assert.Empty(t, plan.Conflicts)
}

func TestBuildPlan_DisagreementCreatesConflict(t *testing.T) {
	caseID, docID := uuid.New(), uuid.New()
	plan := BuildPlan(Input{
		CaseID:     caseID,
		DocumentID: docID,
		Current:    map[string]string{"applicant_first_name": "Anna"},
		Incoming:   map[string]string{"applicant_first_name": "Ana"},
		Confidence: 0.85,
	})

	assert.Empty(t, plan.Writes, "case record must not change on disagreement")
	require.Len(t, plan.Conflicts, 1)

	c := plan.Conflicts[0]
	assert.Equal(t, caseID, c.CaseID)
	assert.Equal(t, docID, c.DocumentID)
	assert.Equal(t, "applicant_first_name", c.FieldName)
	assert.Equal(t, "Ana", c.OCRValue)
	assert.Equal(t, "Anna", c.ManualValue)
	assert.Equal(t, 0.85, c.Confidence)
	assert.Equal(t, domain.ConflictStatusPending, c.Status)
}

func TestBuildPlan_OverwriteBypassesConflict(t *testing.T) {
	plan := BuildPlan(Input{
		CaseID:          uuid.New(),
		DocumentID:      uuid.New(),
		Current:         map[string]string{"applicant_first_name": "Anna"},
		Incoming:        map[string]string{"applicant_first_name": "Ana"},
		OverwriteManual: true,
	})

	assert.Equal(t, map[string]string{"applicant_first_name": "Ana"}, plan.Writes)
	assert.Empty(t, plan.Conflicts)
}

func TestBuildPlan_EqualValuesShortCircuit(t *testing.T) {
	// Applying the same field set twice produces no writes and no conflicts
	// the second time.
	incoming := map[string]string{
		"applicant_first_name": "John",
		"applicant_last_name":  "Smith",
	}
	first := BuildPlan(Input{Current: map[string]string{}, Incoming: incoming})
	require.Len(t, first.Writes, 2)

	second := BuildPlan(Input{Current: first.Writes, Incoming: incoming})
	assert.Empty(t, second.Writes)
	assert.Empty(t, second.Conflicts)
	assert.Equal(t, 2, second.Unchanged)
}

func TestBuildPlan_WhitespaceOnlyIncomingIgnored(t *testing.T) {
	plan := BuildPlan(Input{
		Current:  map[string]string{"applicant_first_name": "Anna"},
		Incoming: map[string]string{"applicant_first_name": "   ", "applicant_last_name": ""},
	})
	assert.Empty(t, plan.Writes)
	assert.Empty(t, plan.Conflicts)
}

func TestBuildPlan_MixedOutcomes(t *testing.T) {
	plan := BuildPlan(Input{
		Current: map[string]string{
			"applicant_first_name": "John",  // equal
			"applicant_last_name":  "Smyth", // differs
		},
		Incoming: map[string]string{
			"applicant_first_name":    "John",
			"applicant_last_name":     "Smith",
			"applicant_date_of_birth": "1980-02-02", // new
		},
	})

	assert.Equal(t, map[string]string{"applicant_date_of_birth": "1980-02-02"}, plan.Writes)
	require.Len(t, plan.Conflicts, 1)
	assert.Equal(t, "applicant_last_name", plan.Conflicts[0].FieldName)
	assert.Equal(t, 1, plan.Unchanged)
}

func TestBuildPlan_ConflictOrderIsDeterministic(t *testing.T) {
	plan := BuildPlan(Input{
		Current: map[string]string{
			"b_field": "x",
			"a_field": "y",
			"c_field": "z",
		},
		Incoming: map[string]string{
			"c_field": "3",
			"a_field": "1",
			"b_field": "2",
		},
	})
	require.Len(t, plan.Conflicts, 3)
	assert.Equal(t, "a_field", plan.Conflicts[0].FieldName)
	assert.Equal(t, "b_field", plan.Conflicts[1].FieldName)
	assert.Equal(t, "c_field", plan.Conflicts[2].FieldName)
}
