package registration

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEventNotFound is returned when an event ID does not exist.
	ErrEventNotFound = errors.New("event not found")
)

// Event is the attendee-facing event a CSV import targets.
type Event struct {
	ID          uuid.UUID
	OrganizerID uuid.UUID
	Name        string
	StartsAt    time.Time
	CreatedAt   time.Time
}

// TicketType is one purchasable ticket tier for an event. Import rows
// reference ticket types by name.
type TicketType struct {
	ID      uuid.UUID
	EventID uuid.UUID
	Name    string
}
