package registration

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/gatherkit/registrar/internal/importer"
)

func setupStoreTest(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	return NewStore(db), mock, func() { db.Close() }
}

func TestGetEvent(t *testing.T) {
	store, mock, cleanup := setupStoreTest(t)
	defer cleanup()

	eventID := uuid.New()
	organizerID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, organizer_id, name, starts_at, created_at")).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organizer_id", "name", "starts_at", "created_at"}).
			AddRow(eventID, organizerID, "GopherConf", now, now))

	event, err := store.GetEvent(context.Background(), eventID)
	if err != nil {
		t.Fatalf("GetEvent() error: %v", err)
	}
	if event.Name != "GopherConf" || event.OrganizerID != organizerID {
		t.Errorf("event = %+v", event)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	store, mock, cleanup := setupStoreTest(t)
	defer cleanup()

	eventID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, organizer_id, name, starts_at, created_at")).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organizer_id", "name", "starts_at", "created_at"}))

	_, err := store.GetEvent(context.Background(), eventID)
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("GetEvent() error = %v, want ErrEventNotFound", err)
	}
}

func TestTicketTypesByName_LowerCasesKeys(t *testing.T) {
	store, mock, cleanup := setupStoreTest(t)
	defer cleanup()

	eventID := uuid.New()
	generalID := uuid.New()
	vipID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM ticket_types")).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "name"}).
			AddRow(generalID, eventID, "General Admission").
			AddRow(vipID, eventID, "VIP"))

	byName, err := store.TicketTypesByName(context.Background(), eventID)
	if err != nil {
		t.Fatalf("TicketTypesByName() error: %v", err)
	}
	if byName["general admission"] != generalID {
		t.Errorf("byName[general admission] = %s, want %s", byName["general admission"], generalID)
	}
	if byName["vip"] != vipID {
		t.Errorf("byName[vip] = %s, want %s", byName["vip"], vipID)
	}
}

func TestActiveEmails(t *testing.T) {
	store, mock, cleanup := setupStoreTest(t)
	defer cleanup()

	eventID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE event_id = $1 AND status = 'active'")).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"lower"}).
			AddRow("john@x.com").
			AddRow("jane@x.com"))

	emails, err := store.ActiveEmails(context.Background(), eventID)
	if err != nil {
		t.Fatalf("ActiveEmails() error: %v", err)
	}
	if len(emails) != 2 || !emails["john@x.com"] || !emails["jane@x.com"] {
		t.Errorf("emails = %v", emails)
	}
}

func TestCreateRegistration(t *testing.T) {
	store, mock, cleanup := setupStoreTest(t)
	defer cleanup()

	reg := &importer.NewRegistration{
		EventID:       uuid.New(),
		Name:          "John Doe",
		Email:         "john@x.com",
		TicketTypeID:  uuid.New(),
		PaymentStatus: "paid",
		EmailStatus:   "active",
		RegisteredAt:  time.Now(),
		Code:          "ABC234DEF",
		CustomData:    map[string]string{"Company": "Acme Inc", "registration_code": "ABC234DEF"},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
		WithArgs(sqlmock.AnyArg(), reg.EventID, reg.TicketTypeID, reg.Name, reg.Email,
			reg.PaymentStatus, reg.EmailStatus, reg.Code, sqlmock.AnyArg(), reg.RegisteredAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.CreateRegistration(context.Background(), reg); err != nil {
		t.Fatalf("CreateRegistration() error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateRegistration_DBError(t *testing.T) {
	store, mock, cleanup := setupStoreTest(t)
	defer cleanup()

	reg := &importer.NewRegistration{
		EventID:      uuid.New(),
		Name:         "John Doe",
		Email:        "john@x.com",
		TicketTypeID: uuid.New(),
		Code:         "ABC234DEF",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
		WillReturnError(errors.New("connection reset"))

	err := store.CreateRegistration(context.Background(), reg)
	if err == nil {
		t.Fatal("CreateRegistration() should surface the database error")
	}
}
