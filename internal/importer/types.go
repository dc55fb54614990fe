package importer

// =============================================================================
// ATTENDEE IMPORT PIPELINE - Shared Types
// =============================================================================
// The import pipeline runs in four phases: upload -> map -> validate ->
// execute. Each phase is a stateless request/response; the raw file content
// and the confirmed field mapping are re-submitted every time, so none of
// these types survive between calls.

// FieldKind identifies a canonical attendee attribute, or Custom for
// pass-through columns.
type FieldKind string

const (
	FieldName          FieldKind = "name"
	FieldEmail         FieldKind = "email"
	FieldTicketType    FieldKind = "ticketType"
	FieldPaymentStatus FieldKind = "paymentStatus"
	FieldEmailStatus   FieldKind = "emailStatus"
	FieldRegisteredAt  FieldKind = "registeredAt"
	FieldCustom        FieldKind = "custom"
)

// Field is the target a CSV column feeds. Canonical targets carry only a
// Kind; custom targets also carry the key the value is stored under.
type Field struct {
	Kind      FieldKind `json:"kind"`
	CustomKey string    `json:"customKey,omitempty"`
}

// CustomField builds a pass-through field keyed by the original column header.
func CustomField(key string) Field {
	return Field{Kind: FieldCustom, CustomKey: key}
}

// ColumnMapping binds one raw CSV column name to a field. Columns absent
// from a FieldMapping are excluded from the import entirely.
type ColumnMapping struct {
	Column string `json:"column"`
	Field  Field  `json:"field"`
}

// FieldMapping is the ordered set of column bindings confirmed by the
// organizer (or suggested by the advisor).
type FieldMapping []ColumnMapping

// ParsedRow is one data row keyed by raw column name. Index is the 1-based
// position in the file excluding the header row; it is the stable identity
// used in all error reporting.
type ParsedRow struct {
	Index  int               `json:"index"`
	Values map[string]string `json:"values"`
}

// ParsedFile is the output of the parse phase.
type ParsedFile struct {
	Filename  string      `json:"filename"`
	Columns   []string    `json:"columns"`
	Rows      []ParsedRow `json:"rows"`
	TotalRows int         `json:"totalRows"`
}

// ErrorType classifies a row-level validation finding.
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeDuplicateInFile ErrorType = "duplicate_in_file"
	ErrorTypeDuplicateInDB   ErrorType = "duplicate_in_db"
)

// ValidationError describes one finding against one row. Never mutated after
// the validator produces it.
type ValidationError struct {
	Row     int       `json:"row"`
	Field   string    `json:"field"`
	Value   string    `json:"value"`
	Message string    `json:"message"`
	Type    ErrorType `json:"type"`
}

// ValidationReport is computed fresh on every validate call. The four row
// counters partition the row set: a duplicate row is excluded from ValidRows
// but is not double-counted in InvalidRows.
type ValidationReport struct {
	TotalRows          int               `json:"totalRows"`
	ValidRows          int               `json:"validRows"`
	InvalidRows        int               `json:"invalidRows"`
	InFileDuplicates   int               `json:"inFileDuplicates"`
	DatabaseDuplicates int               `json:"databaseDuplicates"`
	Errors             []ValidationError `json:"errors"`
}

// DuplicateStrategy is the organizer's choice for rows whose email already
// exists (in the file or in the registration store).
type DuplicateStrategy string

const (
	DuplicateSkip   DuplicateStrategy = "skip"
	DuplicateCreate DuplicateStrategy = "create"
)

// Valid reports whether s is a known strategy.
func (s DuplicateStrategy) Valid() bool {
	return s == DuplicateSkip || s == DuplicateCreate
}

// ImportStatus is the overall result of an execute call.
type ImportStatus string

const (
	StatusCompleted ImportStatus = "completed"
	StatusPartial   ImportStatus = "partial"
	StatusFailed    ImportStatus = "failed"
)

// RowFailure records why one row did not import. The original raw value is
// kept so the operator can correct and resubmit the row.
type RowFailure struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ImportOutcome is created once per execute call and immutable once returned.
// SuccessCount + FailureCount + SkippedCount equals the number of rows that
// reached the executor.
type ImportOutcome struct {
	SuccessCount int          `json:"successCount"`
	FailureCount int          `json:"failureCount"`
	SkippedCount int          `json:"skippedCount"`
	Failures     []RowFailure `json:"failures"`
	Status       ImportStatus `json:"status"`
}
