package engine

import (
	"fmt"
	"strconv"

	"go.tinydb/internal/sql"
	"go.tinydb/internal/storage"
)

// Result of one executed statement. CREATE and INSERT leave it empty.
type Result struct {
	Columns []string
	Rows    [][]storage.Value
}

func (db *Database) Execute(stmt sql.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *sql.CreateTableStatement:
		return &Result{}, db.CreateTable(s.Table, s.Columns)
	case *sql.InsertStatement:
		return &Result{}, db.executeInsert(s)
	case *sql.SelectStatement:
		return db.executeSelect(s)
	default:
		return nil, fmt.Errorf("%w: unsupported statement", storage.ErrInvalidInput)
	}
}

func (db *Database) executeInsert(s *sql.InsertStatement) error {
	meta, err := db.catalog.LookupTable(s.Table)
	if err != nil {
		return err
	}

	values, err := bindValues(meta.Columns, s.Columns, s.Values)
	if err != nil {
		return err
	}
	return db.Insert(s.Table, values)
}

func (db *Database) executeSelect(s *sql.SelectStatement) (*Result, error) {
	meta, err := db.catalog.LookupTable(s.Table)
	if err != nil {
		return nil, err
	}

	rows, err := db.SelectAll(s.Table)
	if err != nil {
		return nil, err
	}

	if s.WhereColumn != "" {
		idx := columnIndex(meta.Columns, s.WhereColumn)
		if idx < 0 {
			return nil, fmt.Errorf("%w: no column %q in %s", storage.ErrInvalidInput, s.WhereColumn, s.Table)
		}
		want, err := parseValue(meta.Columns[idx], s.WhereValue)
		if err != nil {
			return nil, err
		}
		filtered := rows[:0]
		for _, row := range rows {
			if row.Values[idx] == want {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	projection := make([]int, 0, len(meta.Columns))
	result := &Result{}
	if len(s.Columns) == 0 {
		for i, col := range meta.Columns {
			projection = append(projection, i)
			result.Columns = append(result.Columns, col.Name)
		}
	} else {
		for _, name := range s.Columns {
			idx := columnIndex(meta.Columns, name)
			if idx < 0 {
				return nil, fmt.Errorf("%w: no column %q in %s", storage.ErrInvalidInput, name, s.Table)
			}
			projection = append(projection, idx)
			result.Columns = append(result.Columns, meta.Columns[idx].Name)
		}
	}

	for _, row := range rows {
		out := make([]storage.Value, len(projection))
		for i, idx := range projection {
			out[i] = row.Values[idx]
		}
		result.Rows = append(result.Rows, out)
	}
	return result, nil
}

// bindValues turns the statement's literals into typed values in
// column order. With an explicit column list every table column must
// be named once; rows are fixed-width, so there are no defaults.
func bindValues(cols []storage.ColumnDefinition, names, raw []string) ([]storage.Value, error) {
	if len(names) == 0 {
		if len(raw) != len(cols) {
			return nil, fmt.Errorf("%w: %d values for %d columns", storage.ErrInvalidInput, len(raw), len(cols))
		}
		values := make([]storage.Value, len(cols))
		for i, col := range cols {
			v, err := parseValue(col, raw[i])
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}

	if len(names) != len(raw) {
		return nil, fmt.Errorf("%w: %d column names for %d values", storage.ErrInvalidInput, len(names), len(raw))
	}
	byName := make(map[string]string, len(names))
	for i, name := range names {
		byName[name] = raw[i]
	}

	values := make([]storage.Value, len(cols))
	for i, col := range cols {
		text, ok := byName[col.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing value for column %s", storage.ErrInvalidInput, col.Name)
		}
		v, err := parseValue(col, text)
		if err != nil {
			return nil, err
		}
		values[i] = v
		delete(byName, col.Name)
	}
	for name := range byName {
		return nil, fmt.Errorf("%w: no column %q", storage.ErrInvalidInput, name)
	}
	return values, nil
}

func parseValue(col storage.ColumnDefinition, text string) (storage.Value, error) {
	switch col.Type {
	case storage.DataTypeInteger:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an INTEGER", storage.ErrInvalidInput, text)
		}
		return storage.IntegerValue(n), nil
	case storage.DataTypeFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a FLOAT", storage.ErrInvalidInput, text)
		}
		return storage.FloatValue(f), nil
	case storage.DataTypeDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a DOUBLE", storage.ErrInvalidInput, text)
		}
		return storage.DoubleValue(f), nil
	case storage.DataTypeString:
		return storage.StringValue(text), nil
	default:
		return nil, fmt.Errorf("%w: column %s has unknown type", storage.ErrInvalidInput, col.Name)
	}
}

func columnIndex(cols []storage.ColumnDefinition, name string) int {
	for i, col := range cols {
		if col.Name == name {
			return i
		}
	}
	return -1
}
