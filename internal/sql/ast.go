package sql

import "go.tinydb/internal/storage"

// Statement is a closed sum: the parser only ever produces the three
// statement kinds below.
type Statement interface {
	stmt()
}

type CreateTableStatement struct {
	Table   string
	Columns []storage.ColumnDefinition
}

type InsertStatement struct {
	Table string
	// Columns is empty when values are positional.
	Columns []string
	Values  []string
}

type SelectStatement struct {
	Table string
	// Columns is empty for SELECT *.
	Columns     []string
	WhereColumn string
	WhereValue  string
}

func (*CreateTableStatement) stmt() {}
func (*InsertStatement) stmt()      {}
func (*SelectStatement) stmt()      {}
