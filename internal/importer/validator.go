package importer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// ROW VALIDATOR
// =============================================================================
// Applies per-field rules and two-phase duplicate detection. Validation is
// recomputed fresh on every call: the same file may be re-validated after a
// mapping change, so nothing here is cached.

// Email shape check. Mirrors the format accepted at registration time.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

var paymentStatuses = map[string]bool{
	"free": true, "pending": true, "paid": true, "failed": true, "refunded": true,
}

var emailStatuses = map[string]bool{
	"active": true, "bounced": true, "unsubscribed": true,
}

// TicketTypeResolver supplies the target event's ticket types keyed by
// lower-cased name.
type TicketTypeResolver interface {
	TicketTypesByName(ctx context.Context, eventID uuid.UUID) (map[string]uuid.UUID, error)
}

// RegistrationChecker reports which lower-cased emails already hold an active
// registration for the event.
type RegistrationChecker interface {
	ActiveEmails(ctx context.Context, eventID uuid.UUID) (map[string]bool, error)
}

// Validator runs the validate phase against the registration collaborators.
type Validator struct {
	tickets       TicketTypeResolver
	registrations RegistrationChecker
}

// NewValidator creates a validator backed by the given collaborators.
func NewValidator(tickets TicketTypeResolver, registrations RegistrationChecker) *Validator {
	return &Validator{tickets: tickets, registrations: registrations}
}

// Validate produces a ValidationReport for the full row set under the
// confirmed mapping. The duplicate strategy does not influence the report's
// classification; it only matters at execution time.
func (v *Validator) Validate(ctx context.Context, eventID uuid.UUID, file *ParsedFile, mapping FieldMapping) (*ValidationReport, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	ticketTypes, err := v.tickets.TicketTypesByName(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading ticket types: %w", err)
	}
	existing, err := v.registrations.ActiveEmails(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading existing registrations: %w", err)
	}

	report := &ValidationReport{
		TotalRows: file.TotalRows,
		Errors:    []ValidationError{},
	}

	// Phase 1 state: first row index seen per lower-cased email. Only rows
	// that pass field validation participate in duplicate detection.
	firstSeen := make(map[string]int)

	for _, row := range file.Rows {
		fieldErrs, _ := checkRowFields(mapping, row, ticketTypes)
		if len(fieldErrs) > 0 {
			report.InvalidRows++
			report.Errors = append(report.Errors, fieldErrs...)
			continue
		}

		email := strings.ToLower(mapping.value(row, FieldEmail))

		if first, seen := firstSeen[email]; seen {
			report.InFileDuplicates++
			report.Errors = append(report.Errors, ValidationError{
				Row:     row.Index,
				Field:   string(FieldEmail),
				Value:   mapping.value(row, FieldEmail),
				Message: fmt.Sprintf("Duplicate email within file, first used on row %d", first),
				Type:    ErrorTypeDuplicateInFile,
			})
			continue
		}
		firstSeen[email] = row.Index

		// Phase 2: only rows not already tagged as in-file duplicates are
		// checked against the registration store.
		if existing[email] {
			report.DatabaseDuplicates++
			report.Errors = append(report.Errors, ValidationError{
				Row:     row.Index,
				Field:   string(FieldEmail),
				Value:   mapping.value(row, FieldEmail),
				Message: "An active registration with this email already exists for this event",
				Type:    ErrorTypeDuplicateInDB,
			})
			continue
		}

		report.ValidRows++
	}

	return report, nil
}

// checkRowFields applies the per-field rules to one row and resolves the
// ticket type. Rows are validated independently; order never affects the
// result, only the reporting sequence.
func checkRowFields(mapping FieldMapping, row ParsedRow, ticketTypes map[string]uuid.UUID) ([]ValidationError, uuid.UUID) {
	var errs []ValidationError
	var ticketTypeID uuid.UUID

	add := func(kind FieldKind, value, message string) {
		errs = append(errs, ValidationError{
			Row:     row.Index,
			Field:   string(kind),
			Value:   value,
			Message: message,
			Type:    ErrorTypeValidation,
		})
	}

	name := mapping.value(row, FieldName)
	switch {
	case name == "":
		add(FieldName, name, "Name is required")
	case len(name) < 2:
		add(FieldName, name, "Name too short")
	case len(name) > 255:
		add(FieldName, name, "Name too long")
	}

	email := mapping.value(row, FieldEmail)
	switch {
	case email == "":
		add(FieldEmail, email, "Email is required")
	case len(email) > 255 || !emailRegex.MatchString(email):
		add(FieldEmail, email, "Invalid email format")
	}

	ticket := mapping.value(row, FieldTicketType)
	if ticket == "" {
		add(FieldTicketType, ticket, "Ticket type is required")
	} else if id, ok := ticketTypes[strings.ToLower(ticket)]; ok {
		ticketTypeID = id
	} else {
		add(FieldTicketType, ticket, "Ticket type not found")
	}

	if payment := mapping.value(row, FieldPaymentStatus); payment != "" && !paymentStatuses[strings.ToLower(payment)] {
		add(FieldPaymentStatus, payment, "Payment status must be one of free, pending, paid, failed, refunded")
	}

	if status := mapping.value(row, FieldEmailStatus); status != "" && !emailStatuses[strings.ToLower(status)] {
		add(FieldEmailStatus, status, "Email status must be one of active, bounced, unsubscribed")
	}

	return errs, ticketTypeID
}
