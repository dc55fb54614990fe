package importer

import "strings"

// =============================================================================
// FIELD-MAPPING ADVISOR
// =============================================================================
// Fuzzy-matches column headers to canonical attendee fields. The suggestion
// is a starting point for the organizer; the confirmed mapping that flows
// into validation and execution may differ entirely.

// headerAliases holds the exact-match alias sets per canonical field, in the
// order groups are tested. Email is special-cased below because it also
// matches prefix/suffix forms ("Email Address", "Work Email").
var headerAliases = []struct {
	kind    FieldKind
	aliases []string
}{
	{FieldName, []string{"name", "full name", "fullname", "attendee", "attendee name"}},
	{FieldTicketType, []string{"ticket", "ticket type", "tickettype", "ticket_type", "type"}},
	{FieldPaymentStatus, []string{"payment", "payment status", "paymentstatus", "payment_status", "status"}},
	{FieldEmailStatus, []string{"email status", "emailstatus", "email_status"}},
	{FieldRegisteredAt, []string{"date", "registered", "registration date", "registrationdate", "registered_at", "registeredat"}},
}

// SuggestMapping proposes a FieldMapping for the given column headers. Every
// column gets an entry: the first column matching a canonical field's
// patterns claims it, and everything else falls through to a custom field
// keyed by the original header. No canonical field is suggested twice, and
// the advisor never fails; an empty file of columns yields an empty mapping.
func SuggestMapping(columns []string) FieldMapping {
	mapping := make(FieldMapping, 0, len(columns))
	assigned := make(map[FieldKind]bool)

	for _, col := range columns {
		kind, ok := matchColumn(col)
		if ok && !assigned[kind] {
			assigned[kind] = true
			mapping = append(mapping, ColumnMapping{Column: col, Field: Field{Kind: kind}})
			continue
		}
		// Unrecognized, or a later column that would duplicate an
		// already-assigned canonical field: pass through as custom.
		mapping = append(mapping, ColumnMapping{Column: col, Field: CustomField(col)})
	}

	return mapping
}

func matchColumn(column string) (FieldKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(column))
	if normalized == "" {
		return "", false
	}

	// Exact aliases win before the fuzzy email rule so "Email Status" lands
	// on emailStatus instead of email.
	for _, group := range headerAliases {
		for _, alias := range group.aliases {
			if normalized == alias {
				return group.kind, true
			}
		}
	}

	if strings.HasPrefix(normalized, "email") || strings.HasSuffix(normalized, "email") || normalized == "e-mail" {
		return FieldEmail, true
	}

	return "", false
}
