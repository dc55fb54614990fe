package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Shared in-memory collaborators for validator and executor tests.

type fakeEventDirectory struct {
	ticketTypes map[string]uuid.UUID
	existing    map[string]bool
	ticketErr   error
	existingErr error
}

func newFakeDirectory(ticketNames ...string) *fakeEventDirectory {
	types := make(map[string]uuid.UUID, len(ticketNames))
	for _, name := range ticketNames {
		types[strings.ToLower(name)] = uuid.New()
	}
	return &fakeEventDirectory{ticketTypes: types, existing: map[string]bool{}}
}

func (f *fakeEventDirectory) TicketTypesByName(ctx context.Context, eventID uuid.UUID) (map[string]uuid.UUID, error) {
	if f.ticketErr != nil {
		return nil, f.ticketErr
	}
	return f.ticketTypes, nil
}

func (f *fakeEventDirectory) ActiveEmails(ctx context.Context, eventID uuid.UUID) (map[string]bool, error) {
	if f.existingErr != nil {
		return nil, f.existingErr
	}
	return f.existing, nil
}

type fakeRegistrationStore struct {
	created   []*NewRegistration
	failEmail map[string]error
}

func (f *fakeRegistrationStore) CreateRegistration(ctx context.Context, reg *NewRegistration) error {
	if err, ok := f.failEmail[reg.Email]; ok {
		return err
	}
	f.created = append(f.created, reg)
	return nil
}

type fakeMailer struct {
	sent []Confirmation
	err  error
}

func (f *fakeMailer) SendConfirmation(ctx context.Context, c Confirmation) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, c)
	return nil
}

// mustParse builds a ParsedFile from (name, email, ticket) triples.
func mustParseRows(rows ...[3]string) *ParsedFile {
	var sb strings.Builder
	sb.WriteString("Name,Email,Ticket\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s,%s,%s\n", r[0], r[1], r[2])
	}
	file, err := Parse(sb.String(), "test.csv")
	if err != nil {
		panic(err)
	}
	return file
}
