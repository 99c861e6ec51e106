package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/quillpress/quillpress/interfaces"
)

// timeLayout is the canonical timestamp format stored in text columns.
const timeLayout = "2006-01-02 15:04:05"

// sqliteSchema is the baseline schema with {{prefix}} substituted into
// every table name. Tables are dropped first so a retried installation
// starts from a clean slate.
const sqliteSchema = `
DROP TABLE IF EXISTS {{prefix}}post_tags;
DROP TABLE IF EXISTS {{prefix}}posts;
DROP TABLE IF EXISTS {{prefix}}tags;
DROP TABLE IF EXISTS {{prefix}}users;
DROP TABLE IF EXISTS {{prefix}}settings;

CREATE TABLE {{prefix}}settings (
    name  TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE {{prefix}}users (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    slug     TEXT NOT NULL UNIQUE,
    name     TEXT NOT NULL,
    email    TEXT NOT NULL,
    password TEXT NOT NULL,
    role     TEXT NOT NULL DEFAULT 'author',
    created  TEXT NOT NULL
);

CREATE TABLE {{prefix}}tags (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    slug        TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT 'post',
    created     TEXT NOT NULL
);

CREATE TABLE {{prefix}}posts (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    slug     TEXT NOT NULL UNIQUE,
    title    TEXT NOT NULL,
    content  TEXT NOT NULL,
    image    TEXT NOT NULL DEFAULT '',
    author   TEXT NOT NULL,
    status   TEXT NOT NULL DEFAULT 'draft',
    sticky   INTEGER NOT NULL DEFAULT 0,
    pub_date TEXT NOT NULL,
    created  TEXT NOT NULL
);

CREATE TABLE {{prefix}}post_tags (
    post INTEGER NOT NULL,
    tag  TEXT NOT NULL,
    PRIMARY KEY (post, tag)
);
`

// sqliteStore implements interfaces.Store on an embedded SQLite
// database. Descriptor.Database is the database file path (":memory:"
// is accepted for tests).
type sqliteStore struct {
	pool   *sqlitex.Pool
	prefix string
	log    *slog.Logger
}

func openSQLite(ctx context.Context, desc interfaces.Descriptor, log *slog.Logger) (interfaces.Store, error) {
	poolSize := 2
	if desc.Database == ":memory:" {
		// In-memory connections are independent databases; a larger
		// pool would scatter tables across them.
		poolSize = 1
	}

	pool, err := sqlitex.NewPool(desc.Database, sqlitex.PoolOptions{
		Flags:    sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenWAL,
		PoolSize: poolSize,
	})
	if err != nil {
		return nil, classifySQLite(ctx, err)
	}

	s := &sqliteStore{pool: pool, prefix: desc.Prefix, log: log}

	// Round-trip probe. Pool connections open lazily, so this is where
	// an unopenable database file actually surfaces.
	conn, err := pool.Take(ctx)
	if err != nil {
		pool.Close()
		return nil, classifySQLite(ctx, err)
	}
	err = sqlitex.ExecuteTransient(conn, "SELECT 1;", nil)
	pool.Put(conn)
	if err != nil {
		pool.Close()
		return nil, classifySQLite(ctx, err)
	}

	return s, nil
}

// classifySQLite maps a driver failure onto the closed ConnError set
// using SQLite primary result codes.
func classifySQLite(ctx context.Context, err error) *interfaces.ConnError {
	kind := interfaces.ConnOther
	switch {
	case timedOut(ctx, err):
		kind = interfaces.ConnTimeout
	default:
		switch sqlite.ErrCode(err).ToPrimary() {
		case sqlite.ResultAuth, sqlite.ResultPerm:
			kind = interfaces.ConnAuth
		case sqlite.ResultCantOpen, sqlite.ResultNotFound:
			kind = interfaces.ConnNotFound
		case sqlite.ResultBusy, sqlite.ResultLocked:
			kind = interfaces.ConnTimeout
		}
	}
	return &interfaces.ConnError{Kind: kind, Err: err}
}

// isConstraint reports whether err is any SQLite constraint violation.
func isConstraint(err error) bool {
	return sqlite.ErrCode(err).ToPrimary() == sqlite.ResultConstraint
}

func (s *sqliteStore) table(name string) string {
	return s.prefix + name
}

func (s *sqliteStore) InitSchema(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	script := strings.ReplaceAll(sqliteSchema, "{{prefix}}", s.prefix)
	if err := sqlitex.ExecuteScript(conn, script, nil); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	s.log.Debug("Schema initialized", slog.String("driver", "sqlite"))
	return nil
}

func (s *sqliteStore) CreateSetting(ctx context.Context, name, value string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	query := fmt.Sprintf("INSERT INTO %s (name, value) VALUES (?, ?);", s.table("settings"))
	if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{name, value},
	}); err != nil {
		return fmt.Errorf("insert setting %q: %w", name, err)
	}
	return nil
}

func (s *sqliteStore) CreateUser(ctx context.Context, user interfaces.User) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	query := fmt.Sprintf(
		"INSERT INTO %s (slug, name, email, password, role, created) VALUES (?, ?, ?, ?, ?, ?);",
		s.table("users"))
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{
			user.Slug, user.Name, user.Email, user.PasswordHash,
			user.Role, user.Created.UTC().Format(timeLayout),
		},
	})
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: %q", interfaces.ErrDuplicateSlug, user.Slug)
		}
		return fmt.Errorf("insert user %q: %w", user.Slug, err)
	}
	return nil
}

func (s *sqliteStore) CreateTag(ctx context.Context, tag interfaces.Tag) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	query := fmt.Sprintf(
		"INSERT INTO %s (slug, name, description, type, created) VALUES (?, ?, ?, ?, ?);",
		s.table("tags"))
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{
			tag.Slug, tag.Name, tag.Description, tag.Type,
			tag.Created.UTC().Format(timeLayout),
		},
	})
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: %q", interfaces.ErrDuplicateSlug, tag.Slug)
		}
		return fmt.Errorf("insert tag %q: %w", tag.Slug, err)
	}
	return nil
}

func (s *sqliteStore) CreatePost(ctx context.Context, post interfaces.Post) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer endFn(&err)

	sticky := 0
	if post.Sticky {
		sticky = 1
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (slug, title, content, image, author, status, sticky, pub_date, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);",
		s.table("posts"))
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{
			post.Slug, post.Title, post.Content, post.Image, post.Author,
			post.Status, sticky,
			post.PubDate.UTC().Format(timeLayout),
			post.Created.UTC().Format(timeLayout),
		},
	})
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: %q", interfaces.ErrDuplicateSlug, post.Slug)
		}
		return fmt.Errorf("insert post %q: %w", post.Slug, err)
	}

	postID := conn.LastInsertRowID()
	linkQuery := fmt.Sprintf("INSERT INTO %s (post, tag) VALUES (?, ?);", s.table("post_tags"))
	for _, tag := range post.Tags {
		err = sqlitex.Execute(conn, linkQuery, &sqlitex.ExecOptions{
			Args: []any{postID, tag},
		})
		if err != nil {
			return fmt.Errorf("link post %q to tag %q: %w", post.Slug, tag, err)
		}
	}
	return nil
}

func (s *sqliteStore) UserBySlug(ctx context.Context, slug string) (*interfaces.User, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var user *interfaces.User
	query := fmt.Sprintf(
		"SELECT slug, name, email, password, role, created FROM %s WHERE slug = ?;",
		s.table("users"))
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{slug},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			created, _ := time.Parse(timeLayout, stmt.ColumnText(5))
			user = &interfaces.User{
				Slug:         stmt.ColumnText(0),
				Name:         stmt.ColumnText(1),
				Email:        stmt.ColumnText(2),
				PasswordHash: stmt.ColumnText(3),
				Role:         stmt.ColumnText(4),
				Created:      created,
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", slug, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %q", interfaces.ErrUserNotFound, slug)
	}
	return user, nil
}

func (s *sqliteStore) Setting(ctx context.Context, name string) (string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var value string
	found := false
	query := fmt.Sprintf("SELECT value FROM %s WHERE name = ?;", s.table("settings"))
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{name},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return "", fmt.Errorf("select setting %q: %w", name, err)
	}
	if !found {
		return "", fmt.Errorf("%w: %q", interfaces.ErrSettingNotFound, name)
	}
	return value, nil
}

func (s *sqliteStore) CountPosts(ctx context.Context) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	count := 0
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s;", s.table("posts"))
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (s *sqliteStore) Close() error {
	return s.pool.Close()
}
