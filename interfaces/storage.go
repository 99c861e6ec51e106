package interfaces

import "context"

// Store is the persistence surface the installer and session layer use.
// Implementations are driver-specific and live in the storage package.
type Store interface {
	// InitSchema drops and recreates the prefixed baseline tables. It is
	// the storage half of the "reset and reinstall" contract: a retried
	// installation must not fail on tables a previous attempt left
	// behind.
	InitSchema(ctx context.Context) error

	// CreateSetting inserts one name/value setting row.
	CreateSetting(ctx context.Context, name, value string) error

	// CreateUser inserts a user. A slug collision returns an error
	// matching ErrDuplicateSlug.
	CreateUser(ctx context.Context, user User) error

	// CreateTag inserts a taxonomy entry.
	CreateTag(ctx context.Context, tag Tag) error

	// CreatePost inserts a content entry along with its tag links.
	CreatePost(ctx context.Context, post Post) error

	// UserBySlug loads a user by canonical slug. Returns ErrUserNotFound
	// if no such user exists.
	UserBySlug(ctx context.Context, slug string) (*User, error)

	// Setting returns the value of a named setting, or ErrSettingNotFound.
	Setting(ctx context.Context, name string) (string, error)

	// CountPosts reports the number of content entries.
	CountPosts(ctx context.Context) (int, error)

	// Close releases the underlying connections.
	Close() error
}

// StoreFactory opens a Store for a connection descriptor. Open performs
// the connectivity probe: it must dial within desc.Timeout and classify
// any failure as a *ConnError.
type StoreFactory interface {
	Open(ctx context.Context, desc Descriptor) (Store, error)
}
