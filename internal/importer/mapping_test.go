package importer

import (
	"reflect"
	"strings"
	"testing"
)

func baseMapping() FieldMapping {
	return FieldMapping{
		{Column: "Name", Field: Field{Kind: FieldName}},
		{Column: "Email", Field: Field{Kind: FieldEmail}},
		{Column: "Ticket", Field: Field{Kind: FieldTicketType}},
	}
}

func TestFieldMappingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mapping FieldMapping
		wantErr string
	}{
		{
			name:    "minimal valid mapping",
			mapping: baseMapping(),
		},
		{
			name: "full mapping with optional and custom fields",
			mapping: append(baseMapping(),
				ColumnMapping{Column: "Payment", Field: Field{Kind: FieldPaymentStatus}},
				ColumnMapping{Column: "Status", Field: Field{Kind: FieldEmailStatus}},
				ColumnMapping{Column: "Company", Field: CustomField("Company")},
			),
		},
		{
			name:    "empty mapping",
			mapping: FieldMapping{},
			wantErr: "field mapping is required",
		},
		{
			name: "missing ticketType",
			mapping: FieldMapping{
				{Column: "Name", Field: Field{Kind: FieldName}},
				{Column: "Email", Field: Field{Kind: FieldEmail}},
			},
			wantErr: `required field "ticketType" is not mapped`,
		},
		{
			name: "email mapped twice",
			mapping: append(baseMapping(),
				ColumnMapping{Column: "Backup Email", Field: Field{Kind: FieldEmail}},
			),
			wantErr: `field "email" is mapped by 2 columns`,
		},
		{
			name: "custom field without key",
			mapping: append(baseMapping(),
				ColumnMapping{Column: "Company", Field: Field{Kind: FieldCustom}},
			),
			wantErr: "has no key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mapping.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFieldMappingCustomValues(t *testing.T) {
	mapping := append(baseMapping(),
		ColumnMapping{Column: "Company", Field: CustomField("Company")},
		ColumnMapping{Column: "Diet", Field: CustomField("dietary_requirements")},
	)

	row := ParsedRow{Index: 1, Values: map[string]string{
		"Name":     "John Doe",
		"Email":    "j@x.com",
		"Ticket":   "General",
		"Company":  "Acme Inc",
		"Diet":     "vegan",
		"Excluded": "never seen", // column absent from the mapping
	}}

	got := mapping.customValues(row)
	want := map[string]string{
		"Company":              "Acme Inc",
		"dietary_requirements": "vegan",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("customValues() = %v, want %v", got, want)
	}
}

func TestFieldMappingCustomValues_SkipsEmpty(t *testing.T) {
	mapping := append(baseMapping(),
		ColumnMapping{Column: "Company", Field: CustomField("Company")},
	)
	row := ParsedRow{Index: 1, Values: map[string]string{"Company": ""}}

	if got := mapping.customValues(row); len(got) != 0 {
		t.Errorf("customValues() = %v, want empty for blank values", got)
	}
}
