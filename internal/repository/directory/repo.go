// Package directory is the SQLite-backed store for campus directory rows.
package directory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/txstate-etc/featured-search-results/internal/domain/directory"
	"github.com/txstate-etc/featured-search-results/internal/domain/search/clause"
)

// NOCASE keeps lookups case-insensitive; the feed mixes cased and
// lowercased values and searchers type whatever they remember.
const schema = `
CREATE TABLE IF NOT EXISTS people (
	userid     TEXT PRIMARY KEY COLLATE NOCASE,
	lastname   TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	firstname  TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	email      TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	title      TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	department TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	address    TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
	phone      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_people_lastname ON people(lastname);
CREATE INDEX IF NOT EXISTS idx_people_email ON people(email);
`

const personColumns = "userid, lastname, firstname, email, title, department, address, phone"

// Repo queries the directory mirror.
type Repo struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the directory database at path.
func Open(path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open directory db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	// single writer suits SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Repo{db: db}, nil
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Search runs a compiled WHERE clause over the people table. The order fields
// come from the query mapping whitelist, so they are safe to interpolate.
func (r *Repo) Search(
	ctx context.Context, where string, binds []any, order []clause.SortField, offset, limit int,
) ([]directory.Person, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + personColumns + " FROM people")
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if len(order) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range order {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(o.Field)
			if o.Desc {
				sb.WriteString(" DESC")
			}
		}
	}
	args := binds
	if limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(append([]any{}, binds...), limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []directory.Person
	for rows.Next() {
		var p directory.Person
		if err := rows.Scan(
			&p.Userid, &p.Lastname, &p.Firstname, &p.Email,
			&p.Title, &p.Department, &p.Address, &p.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

// Count returns how many rows match a compiled WHERE clause.
func (r *Repo) Count(ctx context.Context, where string, binds []any) (int, error) {
	q := "SELECT COUNT(*) FROM people"
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, binds...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return n, nil
}

// Upsert inserts or replaces a directory row. The identity feed sync calls
// this for every person in the feed.
func (r *Repo) Upsert(ctx context.Context, p directory.Person) error {
	if p.Userid == "" {
		return fmt.Errorf("person has no userid")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO people (`+personColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(userid) DO UPDATE SET
	lastname = excluded.lastname,
	firstname = excluded.firstname,
	email = excluded.email,
	title = excluded.title,
	department = excluded.department,
	address = excluded.address,
	phone = excluded.phone`,
		p.Userid, p.Lastname, p.Firstname, p.Email,
		p.Title, p.Department, p.Address, p.Phone,
	)
	if err != nil {
		return fmt.Errorf("upsert person %s: %w", p.Userid, err)
	}
	return nil
}
