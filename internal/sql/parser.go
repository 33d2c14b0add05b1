package sql

import (
	"fmt"
	"strconv"
	"strings"

	"go.tinydb/internal/storage"
)

// Parse turns one SQL statement into its AST node. Keywords are case
// insensitive; a trailing semicolon is optional.
func Parse(input string) (Statement, error) {
	p := &parser{lex: &lexer{input: input}}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var (
		stmt Statement
		err  error
	)
	switch {
	case p.tok.is("CREATE"):
		stmt, err = p.parseCreateTable()
	case p.tok.is("INSERT"):
		stmt, err = p.parseInsert()
	case p.tok.is("SELECT"):
		stmt, err = p.parseSelect()
	default:
		return nil, fmt.Errorf("expected CREATE, INSERT or SELECT, got %q", p.tok.text)
	}
	if err != nil {
		return nil, err
	}

	if p.tok.typ == tokenSemicolon {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.typ != tokenEOF {
		return nil, fmt.Errorf("unexpected input after statement: %q", p.tok.text)
	}
	return stmt, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.tok.is(kw) {
		return fmt.Errorf("expected %s, got %q", kw, p.tok.text)
	}
	return p.advance()
}

func (p *parser) expect(typ tokenType, what string) (string, error) {
	if p.tok.typ != typ {
		return "", fmt.Errorf("expected %s, got %q", what, p.tok.text)
	}
	text := p.tok.text
	return text, p.advance()
}

func (p *parser) parseCreateTable() (*CreateTableStatement, error) {
	if err := p.advance(); err != nil { // CREATE
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}

	name, err := p.expect(tokenIdent, "table name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}

	stmt := &CreateTableStatement{Table: name}
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)

		if p.tok.typ == tokenComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseColumnDef() (storage.ColumnDefinition, error) {
	var col storage.ColumnDefinition

	name, err := p.expect(tokenIdent, "column name")
	if err != nil {
		return col, err
	}
	typeName, err := p.expect(tokenIdent, "column type")
	if err != nil {
		return col, err
	}

	col.Name = name
	switch strings.ToUpper(typeName) {
	case "INTEGER", "INT":
		col.Type = storage.DataTypeInteger
		col.Size = 4
	case "FLOAT":
		col.Type = storage.DataTypeFloat
		col.Size = 4
	case "DOUBLE":
		col.Type = storage.DataTypeDouble
		col.Size = 8
	case "STRING":
		col.Type = storage.DataTypeString
	default:
		return col, fmt.Errorf("unknown column type %q", typeName)
	}

	if p.tok.typ == tokenLParen {
		if err := p.advance(); err != nil {
			return col, err
		}
		sizeText, err := p.expect(tokenNumber, "size")
		if err != nil {
			return col, err
		}
		size, err := strconv.ParseUint(sizeText, 10, 32)
		if err != nil || size == 0 {
			return col, fmt.Errorf("invalid column size %q", sizeText)
		}
		if _, err := p.expect(tokenRParen, ")"); err != nil {
			return col, err
		}
		if col.Type == storage.DataTypeString {
			col.Size = uint32(size)
		}
	} else if col.Type == storage.DataTypeString {
		return col, fmt.Errorf("STRING column %s needs a size, e.g. STRING(32)", name)
	}
	return col, nil
}

func (p *parser) parseInsert() (*InsertStatement, error) {
	if err := p.advance(); err != nil { // INSERT
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}

	name, err := p.expect(tokenIdent, "table name")
	if err != nil {
		return nil, err
	}
	stmt := &InsertStatement{Table: name}

	if p.tok.typ == tokenLParen {
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}
	for {
		if p.tok.typ != tokenNumber && p.tok.typ != tokenString {
			return nil, fmt.Errorf("expected a value, got %q", p.tok.text)
		}
		stmt.Values = append(stmt.Values, p.tok.text)
		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.tok.typ == tokenComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseSelect() (*SelectStatement, error) {
	if err := p.advance(); err != nil { // SELECT
		return nil, err
	}

	stmt := &SelectStatement{}
	if p.tok.typ == tokenStar {
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		for {
			col, err := p.expect(tokenIdent, "column name")
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)

			if p.tok.typ == tokenComma {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	name, err := p.expect(tokenIdent, "table name")
	if err != nil {
		return nil, err
	}
	stmt.Table = name

	if p.tok.is("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		col, err := p.expect(tokenIdent, "column name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenEquals, "="); err != nil {
			return nil, err
		}
		if p.tok.typ != tokenNumber && p.tok.typ != tokenString {
			return nil, fmt.Errorf("expected a value after =, got %q", p.tok.text)
		}
		stmt.WhereColumn = col
		stmt.WhereValue = p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) parseIdentList() ([]string, error) {
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}
	var out []string
	for {
		name, err := p.expect(tokenIdent, "column name")
		if err != nil {
			return nil, err
		}
		out = append(out, name)

		if p.tok.typ == tokenComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}
	return out, nil
}
