package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gatherkit/registrar/internal/importer"
)

// =============================================================================
// REGISTRATION STORE
// =============================================================================
// Postgres-backed store for events, ticket types and attendee registrations.
// It is the persistence side of the import pipeline: ticket-type resolution
// and the duplicate snapshot feed the validator, CreateRegistration lands each
// successful row.

// Store implements the import pipeline's persistence collaborators against
// PostgreSQL.
type Store struct{ db *sql.DB }

// NewStore creates a Postgres-backed registration store.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

var (
	_ importer.TicketTypeResolver  = (*Store)(nil)
	_ importer.RegistrationChecker = (*Store)(nil)
	_ importer.RegistrationCreator = (*Store)(nil)
)

// GetEvent loads one event. Returns ErrEventNotFound for unknown IDs.
func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	e := &Event{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organizer_id, name, starts_at, created_at
		FROM events
		WHERE id = $1
	`, id).Scan(&e.ID, &e.OrganizerID, &e.Name, &e.StartsAt, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// TicketTypes lists an event's ticket tiers in creation order.
func (s *Store) TicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, name
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY created_at
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var out []TicketType
	for rows.Next() {
		var tt TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

// TicketTypesByName returns the event's ticket tiers keyed by lower-cased
// name, the lookup shape row validation matches against.
func (s *Store) TicketTypesByName(ctx context.Context, eventID uuid.UUID) (map[string]uuid.UUID, error) {
	types, err := s.TicketTypes(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uuid.UUID, len(types))
	for _, tt := range types {
		out[strings.ToLower(tt.Name)] = tt.ID
	}
	return out, nil
}

// ActiveEmails returns the lower-cased emails of the event's active
// registrations, the snapshot duplicate detection runs against.
func (s *Store) ActiveEmails(ctx context.Context, eventID uuid.UUID) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT LOWER(email)
		FROM registrations
		WHERE event_id = $1 AND status = 'active'
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list active emails: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		out[email] = true
	}
	return out, rows.Err()
}

// CreateRegistration inserts one attendee registration. The custom-data bag
// is stored as jsonb. No uniqueness is enforced here: duplicate policy is the
// importer's, and the create strategy genuinely inserts a second row.
func (s *Store) CreateRegistration(ctx context.Context, reg *importer.NewRegistration) error {
	customData, err := json.Marshal(reg.CustomData)
	if err != nil {
		return fmt.Errorf("encode custom data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO registrations
			(id, event_id, ticket_type_id, name, email, payment_status,
			 email_status, registration_code, custom_data, status,
			 registered_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'active', $10, NOW())
	`, uuid.New(), reg.EventID, reg.TicketTypeID, reg.Name, reg.Email,
		reg.PaymentStatus, reg.EmailStatus, reg.Code, customData, reg.RegisteredAt)
	if err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}
