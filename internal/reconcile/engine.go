// Package reconcile computes how mapped extraction values merge into a case
// record: which fields to write directly and which disagreements to record as
// conflicts for human resolution. The computation is pure; callers persist
// the plan.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"casedesk/internal/domain"
)

// Plan is the outcome of reconciling one document's mapped fields against the
// current case record snapshot.
type Plan struct {
	// Writes are applied to the case record in a single field-level update.
	Writes map[string]string
	// Conflicts are recorded as pending for human resolution. The case
	// record is left untouched for these fields.
	Conflicts []domain.FieldConflict
	// Unchanged counts incoming fields whose value already matched.
	Unchanged int
}

// Input carries everything BuildPlan needs.
type Input struct {
	CaseID     uuid.UUID
	DocumentID uuid.UUID
	// Current is the case record snapshot.
	Current map[string]string
	// Incoming is the mapped field set from one extraction.
	Incoming map[string]string
	// Confidence is the extraction's overall confidence, recorded on conflicts.
	Confidence float64
	// OverwriteManual authorizes replacing non-empty existing values instead
	// of recording conflicts.
	OverwriteManual bool
}

// BuildPlan decides, field by field: empty or absent current value means a
// direct write; an equal value is a no-op; a differing non-empty value is a
// conflict unless overwrite was authorized. A field never silently loses a
// previously entered value.
func BuildPlan(in Input) Plan {
	plan := Plan{Writes: make(map[string]string)}
	now := time.Now().UTC()

	// Deterministic conflict order for reports and tests.
	names := make([]string, 0, len(in.Incoming))
	for name := range in.Incoming {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		incoming := strings.TrimSpace(in.Incoming[name])
		if incoming == "" {
			continue
		}
		current := strings.TrimSpace(in.Current[name])

		switch {
		case current == "":
			plan.Writes[name] = incoming
		case current == incoming:
			plan.Unchanged++
		case in.OverwriteManual:
			plan.Writes[name] = incoming
		default:
			plan.Conflicts = append(plan.Conflicts, domain.FieldConflict{
				ID:          uuid.New(),
				CaseID:      in.CaseID,
				DocumentID:  in.DocumentID,
				FieldName:   name,
				OCRValue:    incoming,
				ManualValue: current,
				Confidence:  in.Confidence,
				Status:      domain.ConflictStatusPending,
				CreatedAt:   now,
			})
		}
	}
	return plan
}
