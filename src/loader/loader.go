// Package loader loads the flat files of a run into a SQLite database, one table per entity.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ogri-la/wowhead-scraper-go/src/psv"
	"github.com/ogri-la/wowhead-scraper-go/src/rules"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

// Open opens the SQLite database at path. The pool is a single connection so
// per-connection pragmas hold for every statement.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Loader replaces the contents of each entity table with its flat file
type Loader struct {
	db      *sql.DB
	rules   *rules.Rules
	version types.SiteVersion
	store   *psv.Store
}

func New(db *sql.DB, r *rules.Rules, version types.SiteVersion, store *psv.Store) *Loader {
	return &Loader{db: db, rules: r, version: version, store: store}
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func columnType(t rules.FieldType) string {
	switch t {
	case rules.IntegerType, rules.BooleanType:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// CreateTableSQL builds the table definition of an entity from its rules
func CreateTableSQL(entity types.Entity, fields []rules.Field) string {
	columns := make([]string, 0, len(fields))
	for _, field := range fields {
		column := quote(field.Name) + " " + columnType(field.Type)
		if field.NotNull {
			column += " NOT NULL"
		}
		if field.Unique {
			column += " UNIQUE"
		}
		if target, targetField, ok := field.Reference(); ok {
			column += fmt.Sprintf(" REFERENCES %s(%s)", quote(string(target)), quote(targetField))
		}
		columns = append(columns, column)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", quote(string(entity)), strings.Join(columns, ",\n  "))
}

// CreateTables creates any missing entity tables
func (l *Loader) CreateTables(ctx context.Context) error {
	for _, entity := range l.rules.Entities(l.version) {
		fields, err := l.rules.Fields(l.version, entity)
		if err != nil {
			return err
		}
		if _, err := l.db.ExecContext(ctx, CreateTableSQL(entity, fields)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", entity, err)
		}
	}
	return nil
}

// value converts a flat file field to its column value, empty is NULL
func value(field rules.Field, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	switch field.Type {
	case rules.IntegerType:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: '%s' is not an integer", field.Name, raw)
		}
		return i, nil
	case rules.BooleanType:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: '%s' is not a boolean", field.Name, raw)
		}
		return b, nil
	default:
		// names are stored with doubled single quotes, statements here are parameterised
		return strings.ReplaceAll(raw, "''", "'"), nil
	}
}

// Load creates the tables, then deletes and re-inserts every row of every entity in one
// transaction with foreign key checks off. Returns the rows inserted per entity.
func (l *Loader) Load(ctx context.Context) (map[types.Entity]int, error) {
	if err := l.CreateTables(ctx); err != nil {
		return nil, err
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	// has no effect inside a transaction
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return nil, fmt.Errorf("failed to disable foreign keys: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "PRAGMA foreign_keys = ON"); err != nil {
			slog.Warn("failed to re-enable foreign keys", "error", err)
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	loaded := map[types.Entity]int{}
	for _, entity := range l.rules.Entities(l.version) {
		n, err := l.loadEntity(ctx, tx, entity)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", entity, err)
		}
		loaded[entity] = n
		slog.Info("loaded table", "entity", entity, "rows", n)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return loaded, nil
}

func (l *Loader) loadEntity(ctx context.Context, tx *sql.Tx, entity types.Entity) (int, error) {
	fields, err := l.rules.Fields(l.version, entity)
	if err != nil {
		return 0, err
	}
	records, err := l.store.Read(entity)
	if err != nil {
		return 0, err
	}

	table := quote(string(entity))
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return 0, err
	}

	columns := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = quote(field.Name)
		placeholders[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, record := range records {
		args := make([]any, len(fields))
		for j, field := range fields {
			if args[j], err = value(field, record.String(field.Name)); err != nil {
				return 0, fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return len(records), nil
}
