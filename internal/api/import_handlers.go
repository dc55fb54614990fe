package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gatherkit/registrar/internal/importer"
	"github.com/gatherkit/registrar/internal/mappingstore"
)

// =============================================================================
// IMPORT HANDLERS
// =============================================================================
// The three import phases over HTTP. Each call is stateless: the raw file
// content (and, past the parse phase, the confirmed mapping) is re-submitted
// in full on every request.

// ParseRequest is the request body for the parse phase.
type ParseRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ValidateRequest is the request body for the validate phase. The duplicate
// strategy is accepted here for interface symmetry with execute but does not
// change the report's classification.
type ValidateRequest struct {
	Filename          string                     `json:"filename"`
	Content           string                     `json:"content"`
	Mapping           importer.FieldMapping      `json:"mapping"`
	DuplicateStrategy importer.DuplicateStrategy `json:"duplicateStrategy,omitempty"`
}

// ExecuteRequest is the request body for the execute phase.
type ExecuteRequest struct {
	Filename          string                     `json:"filename"`
	Content           string                     `json:"content"`
	Mapping           importer.FieldMapping      `json:"mapping"`
	DuplicateStrategy importer.DuplicateStrategy `json:"duplicateStrategy"`
	SendEmails        bool                       `json:"sendEmails"`
}

// handleParse decodes the uploaded CSV and suggests a field mapping.
// POST /api/events/{eventID}/import/parse
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	event, organizerID, ok := s.authorizeEvent(w, r)
	if !ok {
		return
	}

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		writeError(w, "content is required", http.StatusBadRequest)
		return
	}

	file, err := importer.Parse(req.Content, req.Filename)
	if err != nil {
		var parseErr *importer.ParseError
		if errors.As(err, &parseErr) {
			writeFileError(w, string(parseErr.Code), parseErr.Message)
			return
		}
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := map[string]interface{}{
		"filename":         file.Filename,
		"columns":          file.Columns,
		"totalRows":        file.TotalRows,
		"preview":          file.Preview(),
		"suggestedMapping": importer.SuggestMapping(file.Columns),
	}

	// A previously confirmed mapping beats the advisor's guess when its
	// columns still exist. Cache misses are not errors.
	if s.mappings != nil {
		saved, err := s.mappings.Get(r.Context(), event.ID, organizerID)
		if err == nil {
			resp["savedMapping"] = saved
		} else if !errors.Is(err, mappingstore.ErrNotFound) {
			log.Printf("[Import] Loading saved mapping for event %s: %v", event.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleValidate re-parses the file and reports per-row findings under the
// confirmed mapping.
// POST /api/events/{eventID}/import/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	event, organizerID, ok := s.authorizeEvent(w, r)
	if !ok {
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		writeError(w, "content is required", http.StatusBadRequest)
		return
	}

	file, err := importer.Parse(req.Content, req.Filename)
	if err != nil {
		var parseErr *importer.ParseError
		if errors.As(err, &parseErr) {
			writeFileError(w, string(parseErr.Code), parseErr.Message)
			return
		}
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.validator.Validate(r.Context(), event.ID, file, req.Mapping)
	if err != nil {
		if isMappingError(err) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, "validation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.rememberMapping(r, event.ID, organizerID, req.Mapping)

	writeJSON(w, http.StatusOK, report)
}

// handleExecute imports the row set with partial-commit semantics.
// POST /api/events/{eventID}/import/execute
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	event, organizerID, ok := s.authorizeEvent(w, r)
	if !ok {
		return
	}

	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		writeError(w, "content is required", http.StatusBadRequest)
		return
	}
	if req.DuplicateStrategy == "" {
		req.DuplicateStrategy = importer.DuplicateSkip
	}

	file, err := importer.Parse(req.Content, req.Filename)
	if err != nil {
		var parseErr *importer.ParseError
		if errors.As(err, &parseErr) {
			writeFileError(w, string(parseErr.Code), parseErr.Message)
			return
		}
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := s.executor.Execute(r.Context(), &importer.ExecuteRequest{
		EventID:    event.ID,
		EventName:  event.Name,
		File:       file,
		Mapping:    req.Mapping,
		Strategy:   req.DuplicateStrategy,
		SendEmails: req.SendEmails,
	})
	if err != nil {
		if outcome == nil {
			// Rejected before any row was attempted.
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, "import failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.rememberMapping(r, event.ID, organizerID, req.Mapping)

	writeJSON(w, http.StatusOK, outcome)
}

// rememberMapping saves the confirmed mapping for next time. Best effort: a
// cache write failure never fails the request that carried the mapping.
func (s *Server) rememberMapping(r *http.Request, eventID, organizerID uuid.UUID, mapping importer.FieldMapping) {
	if s.mappings == nil {
		return
	}
	if err := s.mappings.Put(r.Context(), eventID, organizerID, mapping); err != nil {
		log.Printf("[Import] Saving mapping for event %s: %v", eventID, err)
	}
}

// isMappingError reports whether err is a mapping-level gate failure rather
// than a collaborator failure.
func isMappingError(err error) bool {
	if errors.Is(err, importer.ErrNoMapping) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "is not mapped") ||
		strings.Contains(msg, "mapped by") ||
		strings.Contains(msg, "custom mapping") ||
		strings.Contains(msg, "empty column name")
}
