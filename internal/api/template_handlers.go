package api

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gatherkit/registrar/internal/importer"
)

// =============================================================================
// TEMPLATE AND FIELD REFERENCE ENDPOINTS
// =============================================================================

// fieldDescriptor documents one canonical field for mapping UIs.
type fieldDescriptor struct {
	Field       importer.FieldKind `json:"field"`
	Label       string             `json:"label"`
	Required    bool               `json:"required"`
	Description string             `json:"description"`
}

var canonicalFields = []fieldDescriptor{
	{Field: importer.FieldName, Label: "Name", Required: true,
		Description: "Attendee full name, 2 to 255 characters"},
	{Field: importer.FieldEmail, Label: "Email", Required: true,
		Description: "Attendee email address, unique per event"},
	{Field: importer.FieldTicketType, Label: "Ticket Type", Required: true,
		Description: "Must match one of the event's ticket types by name (case-insensitive)"},
	{Field: importer.FieldPaymentStatus, Label: "Payment Status", Required: false,
		Description: "One of free, pending, paid, failed, refunded; defaults to free"},
	{Field: importer.FieldEmailStatus, Label: "Email Status", Required: false,
		Description: "One of active, bounced, unsubscribed; defaults to active"},
	{Field: importer.FieldRegisteredAt, Label: "Registered At", Required: false,
		Description: "Original registration date; defaults to the import time"},
}

// handleImportFields returns the canonical fields available for mapping.
// GET /api/import/fields
func (s *Server) handleImportFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields":                  canonicalFields,
		"required_fields":         []importer.FieldKind{importer.FieldName, importer.FieldEmail, importer.FieldTicketType},
		"supported_custom_fields": true,
	})
}

// handleImportTemplate returns a starter CSV with the canonical columns and a
// couple of sample rows.
// GET /api/import/template
func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	headers := []string{"Name", "Email", "Ticket Type", "Payment Status", "Email Status", "Registered At"}
	sampleRows := [][]string{
		{"Jane Smith", "jane@example.com", "General Admission", "paid", "active", "2026-08-01"},
		{"John Doe", "john@example.com", "VIP", "free", "active", ""},
	}

	writeCSVTemplate(w, "attendee_import_template.csv", headers, sampleRows)
}

func writeCSVTemplate(w http.ResponseWriter, filename string, headers []string, sampleRows [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write(headers)
	for _, row := range sampleRows {
		writer.Write(row)
	}
}
