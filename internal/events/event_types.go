package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDepartmentCreated EventType = "department.created"
	EventDepartmentUpdated EventType = "department.updated"
	EventDepartmentDeleted EventType = "department.deleted"
	EventEmployeeCreated   EventType = "employee.created"
	EventEmployeeUpdated   EventType = "employee.updated"
	EventEmployeeDeleted   EventType = "employee.deleted"
)

// WriteEvents lists every event emitted by a data change.
var WriteEvents = []EventType{
	EventDepartmentCreated,
	EventDepartmentUpdated,
	EventDepartmentDeleted,
	EventEmployeeCreated,
	EventEmployeeUpdated,
	EventEmployeeDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(eventType EventType, entityID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// DepartmentPayload describes a department change.
type DepartmentPayload struct {
	Name string `json:"name"`
}

// EmployeePayload describes an employee change.
type EmployeePayload struct {
	DepartmentID         int64  `json:"department_id"`
	PreviousDepartmentID *int64 `json:"previous_department_id,omitempty"`
	Email                string `json:"email,omitempty"`
}
