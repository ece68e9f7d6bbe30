package clause

import (
	"errors"
	"reflect"
	"testing"

	"github.com/txstate-etc/featured-search-results/internal/domain"
)

func TestCompileSQLRoundTrip(t *testing.T) {
	m := testMapping(t)
	clauses := Parse("lastname is a, firstname begins with b", m)

	where, binds, err := CompileSQL(clauses, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "lastname = ? AND firstname LIKE ?" {
		t.Errorf("where = %q", where)
	}
	if !reflect.DeepEqual(binds, []any{"a", "b%"}) {
		t.Errorf("binds = %v", binds)
	}
}

func TestCompileSQLOperators(t *testing.T) {
	m := testMapping(t)

	tests := []struct {
		name      string
		clause    Clause
		wantWhere string
		wantBind  any
	}{
		{"contains", Clause{Alias: "email", Op: OpContains, Value: "edu"}, "email LIKE ?", "%edu%"},
		{"equals", Clause{Alias: "email", Op: OpEquals, Value: "x@y.edu"}, "email = ?", "x@y.edu"},
		{"starts with", Clause{Alias: "email", Op: OpStartsWith, Value: "jo"}, "email LIKE ?", "jo%"},
		{"ends with", Clause{Alias: "email", Op: OpEndsWith, Value: "edu"}, "email LIKE ?", "%edu"},
		{"less on string anchors left", Clause{Alias: "lastname", Op: OpLess, Value: "sm"}, "lastname LIKE ?", "sm%"},
		{"greater on string anchors right", Clause{Alias: "lastname", Op: OpGreater, Value: "son"}, "lastname LIKE ?", "%son"},
		{"less on number compares", Clause{Alias: "age", Op: OpLess, Value: "30"}, "age < ?", "30"},
		{"greater on number compares", Clause{Alias: "age", Op: OpGreater, Value: "21"}, "age > ?", "21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, binds, err := CompileSQL([]Clause{tt.clause}, m)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if len(binds) != 1 || binds[0] != tt.wantBind {
				t.Errorf("binds = %v, want [%v]", binds, tt.wantBind)
			}
		})
	}
}

func TestCompileSQLNegation(t *testing.T) {
	m := testMapping(t)
	where, binds, err := CompileSQL([]Clause{
		{Negated: true, Alias: "lastname", Op: OpEquals, Value: "smith"},
	}, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "NOT (lastname = ?)" {
		t.Errorf("where = %q", where)
	}
	if !reflect.DeepEqual(binds, []any{"smith"}) {
		t.Errorf("binds = %v, negation must not alter field or value", binds)
	}
}

func TestCompileSQLDefaultFieldsOrGroup(t *testing.T) {
	m := testMapping(t)
	where, binds, err := CompileSQL([]Clause{{Op: OpContains, Value: "smith"}}, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "(lastname LIKE ? OR firstname LIKE ?)" {
		t.Errorf("where = %q", where)
	}
	if !reflect.DeepEqual(binds, []any{"%smith%", "%smith%"}) {
		t.Errorf("binds = %v", binds)
	}
}

func TestCompileSQLClausesJoinWithAnd(t *testing.T) {
	m := testMapping(t)
	where, binds, err := CompileSQL([]Clause{
		{Op: OpContains, Value: "smith"},
		{Alias: "age", Op: OpGreater, Value: "21"},
	}, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "(lastname LIKE ? OR firstname LIKE ?) AND age > ?" {
		t.Errorf("where = %q", where)
	}
	if len(binds) != 3 {
		t.Errorf("binds = %v", binds)
	}
}

func TestCompileSQLEscapesLikeMetacharacters(t *testing.T) {
	m := testMapping(t)
	where, binds, err := CompileSQL([]Clause{
		{Alias: "email", Op: OpContains, Value: "100%"},
	}, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != `email LIKE ? ESCAPE '\'` {
		t.Errorf("where = %q", where)
	}
	if binds[0] != `%100\%%` {
		t.Errorf("bind = %q", binds[0])
	}
}

func TestCompileSQLEmptyClauses(t *testing.T) {
	m := testMapping(t)
	where, binds, err := CompileSQL(nil, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "" || len(binds) != 0 {
		t.Errorf("where = %q, binds = %v", where, binds)
	}
}

func TestCompileSQLMappingMismatchFailsFast(t *testing.T) {
	// alias table deliberately points at a field the types table never heard of
	broken := MustMapping(
		map[string]string{"legacy": "legacy_column", "lastname": "lastname"},
		map[string]FieldType{"lastname": TypeString},
		[]string{"lastname"},
	)
	_, _, err := CompileSQL([]Clause{{Alias: "legacy", Op: OpContains, Value: "x"}}, broken)
	if !errors.Is(err, domain.ErrMappingMismatch) {
		t.Errorf("err = %v, want ErrMappingMismatch", err)
	}
}
