package clause

import "testing"

func TestNewMapping_Validation(t *testing.T) {
	types := map[string]FieldType{"lastname": TypeString}

	tests := []struct {
		name          string
		aliases       map[string]string
		fieldTypes    map[string]FieldType
		defaultFields []string
	}{
		{
			name:          "no field types",
			aliases:       map[string]string{"name": "lastname"},
			fieldTypes:    nil,
			defaultFields: []string{"lastname"},
		},
		{
			name:          "no default fields",
			aliases:       map[string]string{"name": "lastname"},
			fieldTypes:    types,
			defaultFields: nil,
		},
		{
			name:          "untyped default field",
			aliases:       map[string]string{"name": "lastname"},
			fieldTypes:    types,
			defaultFields: []string{"firstname"},
		},
		{
			name:          "empty alias",
			aliases:       map[string]string{"  ": "lastname"},
			fieldTypes:    types,
			defaultFields: []string{"lastname"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMapping(tt.aliases, tt.fieldTypes, tt.defaultFields); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMapping_FieldResolution(t *testing.T) {
	m := PeopleMapping()

	tests := []struct {
		alias string
		field string
		ok    bool
	}{
		{"lastname", "lastname", true},
		{"Last Name", "lastname", true},
		{"netid", "userid", true},
		{"DEPT", "department", true},
		{"office", "address", true},
		{"salary", "", false},
	}

	for _, tt := range tests {
		field, ok := m.Field(tt.alias)
		if ok != tt.ok || field != tt.field {
			t.Errorf("Field(%q) = %q, %v; want %q, %v", tt.alias, field, ok, tt.field, tt.ok)
		}
	}
}

func TestMapping_MaxAliasWords(t *testing.T) {
	people := PeopleMapping()
	if got := people.MaxAliasWords(); got != 2 {
		t.Errorf("people MaxAliasWords = %d, want 2", got)
	}

	results := ResultMapping()
	if got := results.MaxAliasWords(); got != 2 {
		t.Errorf("results MaxAliasWords = %d, want 2", got)
	}
}

func TestResultMapping_Types(t *testing.T) {
	m := ResultMapping()

	tests := []struct {
		field string
		want  FieldType
	}{
		{"url", TypeString},
		{"tags", TypeArray},
		{"priority", TypeNumber},
		{"lasttested", TypeDate},
		{"brokensince", TypeDate},
	}

	for _, tt := range tests {
		got, ok := m.Type(tt.field)
		if !ok || got != tt.want {
			t.Errorf("Type(%q) = %q, %v; want %q", tt.field, got, ok, tt.want)
		}
	}

	if m.ValidField("entries") {
		t.Error("entries should not be sortable")
	}

	// Canonical date field names double as query aliases.
	for _, alias := range []string{"lasttested", "brokensince"} {
		if field, ok := m.Field(alias); !ok || field != alias {
			t.Errorf("Field(%q) = %q, %v; want identity alias", alias, field, ok)
		}
	}
}

func TestMapping_DefaultFields(t *testing.T) {
	m := PeopleMapping()
	want := []string{"lastname", "firstname", "userid", "email"}
	got := m.DefaultFields()
	if len(got) != len(want) {
		t.Fatalf("DefaultFields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DefaultFields[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
