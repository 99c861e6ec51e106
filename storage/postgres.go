package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/quillpress/quillpress/interfaces"
)

// postgresSchema mirrors the sqlite schema for PostgreSQL.
var postgresSchema = []string{
	`DROP TABLE IF EXISTS {{prefix}}post_tags`,
	`DROP TABLE IF EXISTS {{prefix}}posts`,
	`DROP TABLE IF EXISTS {{prefix}}tags`,
	`DROP TABLE IF EXISTS {{prefix}}users`,
	`DROP TABLE IF EXISTS {{prefix}}settings`,
	`CREATE TABLE {{prefix}}settings (
        name  TEXT PRIMARY KEY,
        value TEXT NOT NULL
    )`,
	`CREATE TABLE {{prefix}}users (
        id       SERIAL PRIMARY KEY,
        slug     TEXT NOT NULL UNIQUE,
        name     TEXT NOT NULL,
        email    TEXT NOT NULL,
        password TEXT NOT NULL,
        role     TEXT NOT NULL DEFAULT 'author',
        created  TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE {{prefix}}tags (
        id          SERIAL PRIMARY KEY,
        slug        TEXT NOT NULL UNIQUE,
        name        TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        type        TEXT NOT NULL DEFAULT 'post',
        created     TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE {{prefix}}posts (
        id       SERIAL PRIMARY KEY,
        slug     TEXT NOT NULL UNIQUE,
        title    TEXT NOT NULL,
        content  TEXT NOT NULL,
        image    TEXT NOT NULL DEFAULT '',
        author   TEXT NOT NULL,
        status   TEXT NOT NULL DEFAULT 'draft',
        sticky   BOOLEAN NOT NULL DEFAULT FALSE,
        pub_date TIMESTAMP NOT NULL,
        created  TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE {{prefix}}post_tags (
        post INTEGER NOT NULL,
        tag  TEXT NOT NULL,
        PRIMARY KEY (post, tag)
    )`,
}

// postgresStore implements interfaces.Store on a PostgreSQL database via
// database/sql and the pq driver.
type postgresStore struct {
	db     *sql.DB
	prefix string
	log    *slog.Logger
}

// quoteConnValue renders one keyword/value pair value for a libpq
// connection string. Values are always single-quoted with backslash
// escaping so operator input containing spaces or quotes cannot split
// the string or smuggle in extra connection parameters.
func quoteConnValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// postgresDSN builds the connection string for a descriptor.
func postgresDSN(desc interfaces.Descriptor, timeout time.Duration) string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable connect_timeout=%d",
		quoteConnValue(desc.Host), quoteConnValue(desc.Port),
		quoteConnValue(desc.Database), quoteConnValue(desc.User),
		quoteConnValue(desc.Password),
		int(timeout.Seconds()))
}

func openPostgres(ctx context.Context, desc interfaces.Descriptor, log *slog.Logger) (interfaces.Store, error) {
	timeout := desc.Timeout
	if timeout == 0 {
		timeout = interfaces.ConnectTimeout
	}

	db, err := sql.Open("postgres", postgresDSN(desc, timeout))
	if err != nil {
		return nil, classifyPostgres(ctx, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, classifyPostgres(ctx, err)
	}

	return &postgresStore{db: db, prefix: desc.Prefix, log: log}, nil
}

// classifyPostgres maps a driver failure onto the closed ConnError set
// using SQLSTATE codes.
func classifyPostgres(ctx context.Context, err error) *interfaces.ConnError {
	kind := interfaces.ConnOther
	var pqErr *pq.Error
	switch {
	case timedOut(ctx, err):
		kind = interfaces.ConnTimeout
	case errors.As(err, &pqErr):
		switch {
		case pqErr.Code.Class() == "28": // invalid_authorization_specification
			kind = interfaces.ConnAuth
		case pqErr.Code == "3D000": // invalid_catalog_name
			kind = interfaces.ConnNotFound
		}
	}
	return &interfaces.ConnError{Kind: kind, Err: err}
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *postgresStore) table(name string) string {
	return s.prefix + name
}

func (s *postgresStore) InitSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		stmt = strings.ReplaceAll(stmt, "{{prefix}}", s.prefix)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	s.log.Debug("Schema initialized", slog.String("driver", "postgres"))
	return nil
}

func (s *postgresStore) CreateSetting(ctx context.Context, name, value string) error {
	query := fmt.Sprintf("INSERT INTO %s (name, value) VALUES ($1, $2)", s.table("settings"))
	if _, err := s.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("insert setting %q: %w", name, err)
	}
	return nil
}

func (s *postgresStore) CreateUser(ctx context.Context, user interfaces.User) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (slug, name, email, password, role, created) VALUES ($1, $2, $3, $4, $5, $6)",
		s.table("users"))
	_, err := s.db.ExecContext(ctx, query,
		user.Slug, user.Name, user.Email, user.PasswordHash, user.Role, user.Created.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", interfaces.ErrDuplicateSlug, user.Slug)
		}
		return fmt.Errorf("insert user %q: %w", user.Slug, err)
	}
	return nil
}

func (s *postgresStore) CreateTag(ctx context.Context, tag interfaces.Tag) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (slug, name, description, type, created) VALUES ($1, $2, $3, $4, $5)",
		s.table("tags"))
	_, err := s.db.ExecContext(ctx, query,
		tag.Slug, tag.Name, tag.Description, tag.Type, tag.Created.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", interfaces.ErrDuplicateSlug, tag.Slug)
		}
		return fmt.Errorf("insert tag %q: %w", tag.Slug, err)
	}
	return nil
}

func (s *postgresStore) CreatePost(ctx context.Context, post interfaces.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		"INSERT INTO %s (slug, title, content, image, author, status, sticky, pub_date, created) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id",
		s.table("posts"))
	var postID int64
	err = tx.QueryRowContext(ctx, query,
		post.Slug, post.Title, post.Content, post.Image, post.Author,
		post.Status, post.Sticky, post.PubDate.UTC(), post.Created.UTC()).Scan(&postID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", interfaces.ErrDuplicateSlug, post.Slug)
		}
		return fmt.Errorf("insert post %q: %w", post.Slug, err)
	}

	linkQuery := fmt.Sprintf("INSERT INTO %s (post, tag) VALUES ($1, $2)", s.table("post_tags"))
	for _, tag := range post.Tags {
		if _, err := tx.ExecContext(ctx, linkQuery, postID, tag); err != nil {
			return fmt.Errorf("link post %q to tag %q: %w", post.Slug, tag, err)
		}
	}
	return tx.Commit()
}

func (s *postgresStore) UserBySlug(ctx context.Context, slug string) (*interfaces.User, error) {
	query := fmt.Sprintf(
		"SELECT slug, name, email, password, role, created FROM %s WHERE slug = $1",
		s.table("users"))
	var user interfaces.User
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&user.Slug, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", interfaces.ErrUserNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", slug, err)
	}
	return &user, nil
}

func (s *postgresStore) Setting(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("SELECT value FROM %s WHERE name = $1", s.table("settings"))
	var value string
	err := s.db.QueryRowContext(ctx, query, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", interfaces.ErrSettingNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("select setting %q: %w", name, err)
	}
	return value, nil
}

func (s *postgresStore) CountPosts(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table("posts"))
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
