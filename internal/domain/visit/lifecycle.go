package visit

import (
	"github.com/google/uuid"

	"github.com/poshable/visitlog/internal/platform/apperr"
)

var (
	ErrUseInterventionFlow = apperr.Validation("visit_type", "Patient interventions are recorded through the intervention form")
	ErrReopenCompleted     = apperr.Conflict("A completed visit cannot be returned to draft")
	ErrTypeChange          = apperr.Validation("visit_type", "Visit type cannot be changed")
)

// Transition checks a status change. Completed is terminal.
func Transition(from, to Status) error {
	if !to.Valid() {
		return apperr.Validationf("status", "Invalid status %q", to)
	}
	if from == StatusCompleted && to == StatusDraft {
		return ErrReopenCompleted
	}
	return nil
}

// Session is what an entry form needs to start: the record to edit, the
// existing draft the user may resume instead, and whether carry-forward has
// a source.
type Session struct {
	Record             *Record `json:"record"`
	Draft              *Record `json:"draft"`
	Resumed            bool    `json:"resumed"`
	LastVisitAvailable bool    `json:"last_visit_available"`
}

// SessionRequest starts a form session. With ResumeDraftID the draft is
// loaded for editing; without it a fresh record is built and the existing
// draft, if any, is only reported.
type SessionRequest struct {
	Type          Type       `json:"visit_type"`
	ResumeDraftID *uuid.UUID `json:"resume_draft_id"`
}
