package importer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IMPORT EXECUTOR
// =============================================================================
// Replays the row set against the registration store with partial-commit
// semantics: rows are processed strictly sequentially, every row's outcome is
// an explicit value folded into the accumulator, and no per-row failure ever
// aborts the batch. A 9,000-row import with 40 bad rows still saves the
// other 8,960 and reports precisely which 40 failed and why.

// customDataCodeKey is where the generated code lands in the custom-data bag.
const customDataCodeKey = "registration_code"

// NewRegistration is the shape the executor hands to the registration store
// for one successful row.
type NewRegistration struct {
	EventID       uuid.UUID
	Name          string
	Email         string
	TicketTypeID  uuid.UUID
	PaymentStatus string
	EmailStatus   string
	RegisteredAt  time.Time
	Code          string
	CustomData    map[string]string
}

// RegistrationCreator persists one attendee registration.
type RegistrationCreator interface {
	CreateRegistration(ctx context.Context, reg *NewRegistration) error
}

// Confirmation carries what the mailer needs for one attendee.
type Confirmation struct {
	Email      string
	Name       string
	EventName  string
	TicketType string
	Code       string
}

// ConfirmationSender dispatches one templated confirmation email. Send
// failures are logged by the executor and never become row failures.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, c Confirmation) error
}

// ExecuteRequest bundles one execute call. The raw file and mapping are
// re-submitted rather than trusted from a prior validate call.
type ExecuteRequest struct {
	EventID    uuid.UUID
	EventName  string
	File       *ParsedFile
	Mapping    FieldMapping
	Strategy   DuplicateStrategy
	SendEmails bool
}

// Executor runs the execute phase against the registration store and mailer.
type Executor struct {
	tickets       TicketTypeResolver
	registrations RegistrationChecker
	store         RegistrationCreator
	mailer        ConfirmationSender // nil disables confirmation emails
}

// NewExecutor creates an executor. mailer may be nil when email dispatch is
// not configured.
func NewExecutor(tickets TicketTypeResolver, registrations RegistrationChecker, store RegistrationCreator, mailer ConfirmationSender) *Executor {
	return &Executor{tickets: tickets, registrations: registrations, store: store, mailer: mailer}
}

// rowResult is the explicit per-row outcome folded into the ImportOutcome.
type rowResult struct {
	failure *RowFailure
	skipped bool
}

// Execute imports the row set one row at a time, in file order. Validity is
// re-derived per row. A systemic failure before any row is attempted (ticket
// types or duplicate snapshot unavailable) yields StatusFailed with zero
// successes and a non-nil error; after that point persistence errors are
// per-row data, not errors.
func (e *Executor) Execute(ctx context.Context, req *ExecuteRequest) (*ImportOutcome, error) {
	if err := req.Mapping.Validate(); err != nil {
		return nil, err
	}
	if !req.Strategy.Valid() {
		return nil, fmt.Errorf("unknown duplicate strategy %q", req.Strategy)
	}

	ticketTypes, err := e.tickets.TicketTypesByName(ctx, req.EventID)
	if err != nil {
		return &ImportOutcome{Status: StatusFailed, Failures: []RowFailure{}},
			fmt.Errorf("loading ticket types: %w", err)
	}
	existing, err := e.registrations.ActiveEmails(ctx, req.EventID)
	if err != nil {
		return &ImportOutcome{Status: StatusFailed, Failures: []RowFailure{}},
			fmt.Errorf("loading existing registrations: %w", err)
	}

	outcome := &ImportOutcome{Failures: []RowFailure{}}
	seen := make(map[string]bool)

	for _, row := range req.File.Rows {
		res := e.importRow(ctx, req, row, ticketTypes, existing, seen)
		switch {
		case res.failure != nil:
			outcome.FailureCount++
			outcome.Failures = append(outcome.Failures, *res.failure)
		case res.skipped:
			outcome.SkippedCount++
		default:
			outcome.SuccessCount++
		}
	}

	switch {
	case outcome.FailureCount == 0:
		outcome.Status = StatusCompleted
	case outcome.SuccessCount > 0:
		outcome.Status = StatusPartial
	default:
		outcome.Status = StatusFailed
	}

	log.Printf("[Import] Event %s: %d imported, %d failed, %d skipped (%s)",
		req.EventID, outcome.SuccessCount, outcome.FailureCount, outcome.SkippedCount, outcome.Status)

	return outcome, nil
}

func (e *Executor) importRow(ctx context.Context, req *ExecuteRequest, row ParsedRow, ticketTypes map[string]uuid.UUID, existing, seen map[string]bool) rowResult {
	fieldErrs, ticketTypeID := checkRowFields(req.Mapping, row, ticketTypes)
	if len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return rowResult{failure: &RowFailure{
			Row:     row.Index,
			Field:   first.Field,
			Value:   first.Value,
			Message: first.Message,
		}}
	}

	email := strings.ToLower(req.Mapping.value(row, FieldEmail))
	duplicate := seen[email] || existing[email]
	seen[email] = true

	if duplicate && req.Strategy == DuplicateSkip {
		return rowResult{skipped: true}
	}

	code := NewRegistrationCode()
	customData := req.Mapping.customValues(row)
	customData[customDataCodeKey] = code

	reg := &NewRegistration{
		EventID:       req.EventID,
		Name:          req.Mapping.value(row, FieldName),
		Email:         email,
		TicketTypeID:  ticketTypeID,
		PaymentStatus: normalizeStatus(req.Mapping.value(row, FieldPaymentStatus), "free"),
		EmailStatus:   normalizeStatus(req.Mapping.value(row, FieldEmailStatus), "active"),
		RegisteredAt:  parseRegisteredAt(req.Mapping.value(row, FieldRegisteredAt)),
		Code:          code,
		CustomData:    customData,
	}

	if err := e.store.CreateRegistration(ctx, reg); err != nil {
		return rowResult{failure: &RowFailure{
			Row:     row.Index,
			Field:   string(FieldEmail),
			Value:   reg.Email,
			Message: err.Error(),
		}}
	}

	if req.SendEmails && e.mailer != nil {
		confirmation := Confirmation{
			Email:      reg.Email,
			Name:       reg.Name,
			EventName:  req.EventName,
			TicketType: req.Mapping.value(row, FieldTicketType),
			Code:       code,
		}
		if err := e.mailer.SendConfirmation(ctx, confirmation); err != nil {
			// Registration success is independent of notification success.
			log.Printf("[Import] Confirmation email to %s failed: %v", reg.Email, err)
		}
	}

	return rowResult{}
}

func normalizeStatus(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	return strings.ToLower(raw)
}

// registeredAtLayouts are tried in order against a mapped registration date.
var registeredAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// parseRegisteredAt parses the optional registration date column. An empty
// or unparseable value falls back to the import time.
func parseRegisteredAt(raw string) time.Time {
	for _, layout := range registeredAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now()
}
