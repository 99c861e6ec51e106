package install

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/quillpress/quillpress/interfaces"
	"github.com/quillpress/quillpress/session"
	"github.com/quillpress/quillpress/storage"
)

func testInstaller(t *testing.T) (*Installer, string) {
	t.Helper()
	root := t.TempDir()
	logger := discardLogger()
	ins := New(root, storage.NewFactory(logger), session.NewManager(logger), logger)
	return ins, root
}

func installRequest(root string) Request {
	return Request{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Username:   "Jane Doe",
		Password:   "correct-horse-battery",
		Driver:     "sqlite",
		DBDatabase: filepath.Join(root, "quillpress.db"),
		DBUser:     "quillpress",
	}
}

// queryPosts reads the seeded posts straight from the database file,
// ordered by insertion.
func queryPosts(t *testing.T, root string) (slugs []string, sticky []bool) {
	t.Helper()
	conn, err := sqlite.OpenConn(filepath.Join(root, "quillpress.db"), sqlite.OpenReadOnly)
	require.NoError(t, err)
	defer conn.Close()

	err = sqlitex.Execute(conn,
		"SELECT slug, sticky FROM quillpress_posts ORDER BY id;",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				slugs = append(slugs, stmt.ColumnText(0))
				sticky = append(sticky, stmt.ColumnInt(1) != 0)
				return nil
			},
		})
	require.NoError(t, err)
	return slugs, sticky
}

func TestRunSuccess(t *testing.T) {
	ins, root := testInstaller(t)

	outcome := ins.Run(context.Background(), installRequest(root))
	require.True(t, outcome.Success, "message: %s", outcome.Message)
	assert.Equal(t, StageComplete, outcome.Stage)
	assert.Equal(t, AdminPath, outcome.Redirect)
	require.NotNil(t, outcome.Session)
	assert.Equal(t, "jane-doe", outcome.Session.UserSlug)

	// Filesystem layout.
	for _, dir := range provisionDirs {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.True(t, IsInstalled(root))
	assert.FileExists(t, filepath.Join(root, accessFileName))

	// Seeded state: canonical owner slug, four posts, first sticky.
	factory := storage.NewFactory(discardLogger())
	st, err := factory.Open(context.Background(), installRequest(root).Canonicalize().Descriptor())
	require.NoError(t, err)
	defer st.Close()

	owner, err := st.UserBySlug(context.Background(), "jane-doe")
	require.NoError(t, err)
	assert.Equal(t, "owner", owner.Role)
	assert.Equal(t, "Jane Doe", owner.Name)

	count, err := st.CountPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	_, err = st.Setting(context.Background(), "auth_key")
	require.NoError(t, err)

	slugs, sticky := queryPosts(t, root)
	assert.Equal(t, []string{
		"welcome-to-quillpress", "the-editor", "themes-and-plugins", "help-and-support",
	}, slugs)
	assert.Equal(t, []bool{true, false, false, false}, sticky)
}

func TestRunSecondAttemptFailsAtCommit(t *testing.T) {
	ins, root := testInstaller(t)
	req := installRequest(root)

	first := ins.Run(context.Background(), req)
	require.True(t, first.Success)

	second := ins.Run(context.Background(), req)
	assert.False(t, second.Success)
	assert.Equal(t, StageCommittingConfig, second.Stage)

	// The first installation's state is untouched: artifact still
	// present, no duplicate seed rows.
	assert.True(t, IsInstalled(root))

	factory := storage.NewFactory(discardLogger())
	st, err := factory.Open(context.Background(), req.Canonicalize().Descriptor())
	require.NoError(t, err)
	defer st.Close()

	count, err := st.CountPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRunReservedUsernameRollsBackCommit(t *testing.T) {
	ins, root := testInstaller(t)

	req := installRequest(root)
	req.Username = "Admin" // canonicalizes to the reserved "admin"

	outcome := ins.Run(context.Background(), req)
	assert.False(t, outcome.Success)
	assert.Equal(t, StageSeedingData, outcome.Stage)
	assert.Equal(t, []string{"username"}, outcome.Invalid)
	assert.Equal(t, msgReservedUsername, outcome.Message)

	// Compensation removed the commit point; a corrected retry works.
	assert.False(t, IsInstalled(root))

	retry := ins.Run(context.Background(), installRequest(root))
	require.True(t, retry.Success, "message: %s", retry.Message)
	assert.True(t, IsInstalled(root))
}

// schemaFailStore fails schema initialization; nothing past that point
// is reachable in the test.
type schemaFailStore struct {
	interfaces.Store
}

func (schemaFailStore) InitSchema(ctx context.Context) error {
	return errors.New("database or disk is full")
}

func (schemaFailStore) Close() error { return nil }

type schemaFailFactory struct{}

func (schemaFailFactory) Open(ctx context.Context, desc interfaces.Descriptor) (interfaces.Store, error) {
	return schemaFailStore{}, nil
}

func TestRunSchemaFailureRollsBackCommit(t *testing.T) {
	root := t.TempDir()
	logger := discardLogger()
	ins := New(root, schemaFailFactory{}, session.NewManager(logger), logger)

	outcome := ins.Run(context.Background(), installRequest(root))
	assert.False(t, outcome.Success)
	assert.Equal(t, StageInitializingSchema, outcome.Stage)
	assert.Contains(t, outcome.Message, "schema")

	// The commit point was reached and then compensated: the artifact
	// this run wrote is gone again, so a retry starts clean.
	assert.False(t, IsInstalled(root))
	assert.FileExists(t, filepath.Join(root, accessFileName))
}

func TestRunValidationFailureHasNoSideEffects(t *testing.T) {
	ins, root := testInstaller(t)

	req := installRequest(root)
	req.Email = ""
	req.Password = "short"

	outcome := ins.Run(context.Background(), req)
	assert.False(t, outcome.Success)
	assert.Equal(t, StageValidating, outcome.Stage)
	assert.ElementsMatch(t, []string{"email", "password"}, outcome.Invalid)
	assert.Equal(t, msgCorrectErrors, outcome.Message)

	assert.False(t, IsInstalled(root))
	_, err := os.Stat(filepath.Join(root, "backups"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunProbeFailureImplicatesDatabaseField(t *testing.T) {
	ins, root := testInstaller(t)

	req := installRequest(root)
	req.DBDatabase = filepath.Join(root, "no", "such", "dir", "quillpress.db")

	outcome := ins.Run(context.Background(), req)
	assert.False(t, outcome.Success)
	assert.Equal(t, StageProbingConnectivity, outcome.Stage)
	assert.Equal(t, []string{"db-database"}, outcome.Invalid)
	assert.Equal(t, "The specified database does not exist.", outcome.Message)

	// No durable artifacts before the commit point.
	assert.False(t, IsInstalled(root))
}

func TestRunUnknownDriverImplicatesConnectionFields(t *testing.T) {
	ins, root := testInstaller(t)

	req := installRequest(root)
	req.Driver = "mysql"

	outcome := ins.Run(context.Background(), req)
	assert.False(t, outcome.Success)
	assert.Equal(t, StageProbingConnectivity, outcome.Stage)
	assert.ElementsMatch(t,
		[]string{"db-host", "db-user", "db-password", "db-database"},
		outcome.Invalid)
}

func TestDescribeConnError(t *testing.T) {
	cases := []struct {
		kind    interfaces.ConnErrorKind
		invalid []string
	}{
		{interfaces.ConnAuth, []string{"db-user", "db-password"}},
		{interfaces.ConnNotFound, []string{"db-database"}},
		{interfaces.ConnTimeout, []string{"db-host"}},
		{interfaces.ConnOther, []string{"db-host", "db-user", "db-password", "db-database"}},
	}
	for _, tc := range cases {
		invalid, message := describeConnError(&interfaces.ConnError{
			Kind: tc.kind,
			Err:  assert.AnError,
		})
		assert.Equal(t, tc.invalid, invalid, "kind %s", tc.kind)
		assert.NotEmpty(t, message)
	}
}
