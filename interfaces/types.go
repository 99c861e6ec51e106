package interfaces

import "time"

// ConnectTimeout bounds a single connectivity attempt against the
// persistent store. Kept short so a mistyped host fails fast instead of
// hanging the install request.
const ConnectTimeout = 5 * time.Second

// Defaults applied to a Descriptor when the operator leaves the
// corresponding field empty.
const (
	DefaultHost   = "localhost"
	DefaultPort   = "5432"
	DefaultPrefix = "quillpress_"
)

// Descriptor holds the resolved connection parameters for the persistent
// store. Immutable once constructed.
type Descriptor struct {
	// Driver selects the storage driver, e.g. "sqlite" or "postgres".
	Driver string

	// Host and Port locate the store for networked drivers. Ignored by
	// the sqlite driver.
	Host string
	Port string

	// Database names the target database. For the sqlite driver this is
	// the database file path.
	Database string

	// User and Password authenticate against the store. Password may be
	// empty; some development stores have none.
	User     string
	Password string

	// Prefix is prepended to every table name. Contains only letters,
	// underscore, and dash.
	Prefix string

	// Timeout bounds the connectivity probe.
	Timeout time.Duration
}

// User is the owner identity created during seeding.
type User struct {
	Slug         string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Created      time.Time
}

// Tag is a taxonomy entry.
type Tag struct {
	Slug        string
	Name        string
	Description string
	Type        string
	Created     time.Time
}

// Post is a content entry. Author references a User by slug, Tags
// reference Tag entries by slug.
type Post struct {
	Slug    string
	Title   string
	Content string
	Image   string
	Author  string
	Status  string
	Tags    []string
	Sticky  bool
	PubDate time.Time
	Created time.Time
}
