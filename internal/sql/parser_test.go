package sql

import (
	"reflect"
	"testing"

	"go.tinydb/internal/storage"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("CREATE TABLE users (id INTEGER, name STRING(32), ratio FLOAT, total DOUBLE);")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	create, ok := stmt.(*CreateTableStatement)
	if !ok {
		t.Fatalf("got %T, want *CreateTableStatement", stmt)
	}
	if create.Table != "users" {
		t.Fatalf("table = %q, want users", create.Table)
	}

	want := []storage.ColumnDefinition{
		{Name: "id", Type: storage.DataTypeInteger, Size: 4},
		{Name: "name", Type: storage.DataTypeString, Size: 32},
		{Name: "ratio", Type: storage.DataTypeFloat, Size: 4},
		{Name: "total", Type: storage.DataTypeDouble, Size: 8},
	}
	if !reflect.DeepEqual(create.Columns, want) {
		t.Fatalf("columns = %+v, want %+v", create.Columns, want)
	}
}

func TestParseCreateTableIntAlias(t *testing.T) {
	stmt, err := Parse("create table t (n int)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	create := stmt.(*CreateTableStatement)
	if create.Columns[0].Type != storage.DataTypeInteger {
		t.Fatalf("INT parsed as %v, want INTEGER", create.Columns[0].Type)
	}
}

func TestParseInsertPositional(t *testing.T) {
	stmt, err := Parse("INSERT INTO users VALUES (1, 'alice', -2.5)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ins := stmt.(*InsertStatement)
	if ins.Table != "users" || ins.Columns != nil {
		t.Fatalf("table=%q columns=%v, want users with no column list", ins.Table, ins.Columns)
	}
	if want := []string{"1", "alice", "-2.5"}; !reflect.DeepEqual(ins.Values, want) {
		t.Fatalf("values = %v, want %v", ins.Values, want)
	}
}

func TestParseInsertNamedColumns(t *testing.T) {
	stmt, err := Parse("INSERT INTO users (name, id) VALUES ('bob', 7)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ins := stmt.(*InsertStatement)
	if want := []string{"name", "id"}; !reflect.DeepEqual(ins.Columns, want) {
		t.Fatalf("columns = %v, want %v", ins.Columns, want)
	}
	if want := []string{"bob", "7"}; !reflect.DeepEqual(ins.Values, want) {
		t.Fatalf("values = %v, want %v", ins.Values, want)
	}
}

func TestParseSelect(t *testing.T) {
	tests := []struct {
		input string
		want  SelectStatement
	}{
		{
			"SELECT * FROM users",
			SelectStatement{Table: "users"},
		},
		{
			"SELECT id, name FROM users",
			SelectStatement{Table: "users", Columns: []string{"id", "name"}},
		},
		{
			"select name from users where id = 42;",
			SelectStatement{Table: "users", Columns: []string{"name"}, WhereColumn: "id", WhereValue: "42"},
		},
		{
			"SELECT * FROM users WHERE name = 'alice'",
			SelectStatement{Table: "users", WhereColumn: "name", WhereValue: "alice"},
		},
	}

	for _, tt := range tests {
		stmt, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.input, err)
		}
		sel := stmt.(*SelectStatement)
		if !reflect.DeepEqual(*sel, tt.want) {
			t.Fatalf("Parse(%q) = %+v, want %+v", tt.input, *sel, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"DROP TABLE users",
		"CREATE users (id INTEGER)",
		"CREATE TABLE t (s STRING)",
		"CREATE TABLE t (s STRING(0))",
		"CREATE TABLE t (n BLOB)",
		"INSERT INTO t VALUES ()",
		"INSERT INTO t VALUES (1",
		"SELECT FROM t",
		"SELECT * FROM t WHERE a =",
		"SELECT * FROM t WHERE a = 'unterminated",
		"SELECT * FROM t garbage",
	}

	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", input)
		}
	}
}
