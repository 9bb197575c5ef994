// Package admin holds the reference data administrators maintain
// (organizations and adult day programs) and staff incident reports.
package admin

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Organization is a residential or care entity patients belong to.
type Organization struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       *string   `json:"address,omitempty"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	ContactPhone  *string   `json:"contact_phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DayProgram is an adult day program a patient may attend.
type DayProgram struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       *string   `json:"address,omitempty"`
	OfficePhone   *string   `json:"office_phone,omitempty"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IncidentReport is a free-form document filed by a staff member. Fields is
// kept as the client sent it; ID, NurseID and CreatedAt are server-owned.
type IncidentReport struct {
	ID        uuid.UUID
	NurseID   uuid.UUID
	Fields    json.RawMessage
	CreatedAt time.Time
}

// MarshalJSON merges the server-owned fields into the client's document.
func (r IncidentReport) MarshalJSON() ([]byte, error) {
	doc := map[string]interface{}{}
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &doc); err != nil {
			return nil, err
		}
	}
	doc["id"] = r.ID
	doc["nurse_id"] = r.NurseID
	doc["created_at"] = r.CreatedAt
	return json.Marshal(doc)
}

// serverOwned are the keys a client may not set on an incident report.
var serverOwned = []string{"id", "nurse_id", "created_at"}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
