// Package store persists the QC records in SQLite and translates list-view
// predicates into SQL.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"qcr/internal/database"
	"qcr/internal/listing"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// MissingRelationError reports a SAP id that does not resolve to a record.
type MissingRelationError struct {
	Entity string
	SapID  string
}

func (e *MissingRelationError) Error() string {
	return fmt.Sprintf("%s with SAP id %s does not exist", e.Entity, e.SapID)
}

// DuplicateError reports a value that violates a uniqueness constraint.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Field, e.Value)
}

// TextOf renders an integer SAP id column as zero-padded text of the given
// width, so substring filters match the id as users see it.
func TextOf(column string, width int) string {
	return fmt.Sprintf("printf('%%0%dd', %s)", width, column)
}

// nullableTextOf is TextOf for a nullable column, rendering NULL as ''.
func nullableTextOf(column string, width int) string {
	return fmt.Sprintf("CASE WHEN %s IS NULL THEN '' ELSE %s END", column, TextOf(column, width))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func fold(expr string) string {
	return database.FoldFunc + "(" + expr + ")"
}

// columns maps listing field names and sort keys of one entity to SQL.
type columns struct {
	filter map[string]string
	sort   map[string]string
	id     string
}

func (c columns) where(p listing.Predicate) (string, []any, error) {
	if len(p) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(p))
	args := make([]any, 0, len(p))
	for _, cond := range p {
		col, ok := c.filter[cond.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %q", cond.Field)
		}
		switch cond.Op {
		case listing.OpContains:
			clauses = append(clauses, fold(col)+" LIKE "+fold("?")+" ESCAPE '\\'")
			args = append(args, containsPattern(cond.Value))
		case listing.OpEqualFold:
			clauses = append(clauses, fold(col)+" = "+fold("?"))
			args = append(args, cond.Value)
		case listing.OpBetween:
			clauses = append(clauses, col+" BETWEEN ? AND ?")
			args = append(args, cond.Value, cond.Upper)
		default:
			return "", nil, fmt.Errorf("unsupported filter op %d", cond.Op)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// orderBy always ends with the primary key so equal sort values keep a
// stable order across pages.
func (c columns) orderBy(s listing.Sort) string {
	dir := "ASC"
	if s.Direction == listing.Desc {
		dir = "DESC"
	}
	col, ok := c.sort[s.Key]
	if !ok || col == c.id {
		return " ORDER BY " + c.id + " " + dir
	}
	return " ORDER BY " + col + " " + dir + ", " + c.id + " ASC"
}

func limitOffset(limit, offset int) (string, []any) {
	if limit <= 0 {
		limit = -1
	}
	return " LIMIT ? OFFSET ?", []any{limit, offset}
}

// sapValue converts a validated SAP id to its stored integer.
func sapValue(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid SAP id %q: %w", s, err)
	}
	return n, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
