package install

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillpress/quillpress/interfaces"
	"github.com/quillpress/quillpress/session"
)

// Stage identifies a step of the provisioning state machine. Stages are
// strictly ordered; the workflow never branches or loops back.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageProbingConnectivity
	StageProvisioningFilesystem
	StageCommittingConfig
	StageInitializingSchema
	StageSeedingData
	StageEstablishingSession
	StageComplete
)

// String returns the stage name used in logs and metrics labels.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageValidating:
		return "validating"
	case StageProbingConnectivity:
		return "probing-connectivity"
	case StageProvisioningFilesystem:
		return "provisioning-filesystem"
	case StageCommittingConfig:
		return "committing-config"
	case StageInitializingSchema:
		return "initializing-schema"
	case StageSeedingData:
		return "seeding-data"
	case StageEstablishingSession:
		return "establishing-session"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Redirect targets handed back on success.
const (
	AdminPath = "/admin/"
	LoginPath = "/admin/login/"
)

// lockFileName is the advisory lock serializing concurrent install
// attempts against one deployment root.
const lockFileName = ".install.lock"

const msgReservedUsername = "This username is reserved and cannot be used."

// Outcome is the terminal result of one orchestrator run.
type Outcome struct {
	Success  bool
	Stage    Stage
	Redirect string
	Invalid  []string
	Message  string

	// Session is the owner's established session, nil when session
	// establishment failed (the workflow still succeeds).
	Session *session.Session
}

// Installer sequences the provisioning workflow against one deployment
// root. A single Installer may serve many requests, but the advisory
// lock ensures only one run makes progress at a time.
type Installer struct {
	root     string
	factory  interfaces.StoreFactory
	sessions *session.Manager
	log      *slog.Logger
	now      func() time.Time
}

// New creates an installer for the given deployment root.
func New(root string, factory interfaces.StoreFactory, sessions *session.Manager, log *slog.Logger) *Installer {
	return &Installer{
		root:     root,
		factory:  factory,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

// Run drives the workflow to a terminal state. It is single-pass: each
// stage starts only after the previous one succeeded, the first failure
// short-circuits, and compensation removes the connection configuration
// if the failure happened after this run committed it.
func (ins *Installer) Run(ctx context.Context, req Request) Outcome {
	req = req.Canonicalize()
	if res := req.Validate(); !res.OK() {
		return ins.fail(StageValidating, res.Invalid, res.Message)
	}

	// Serialize the probe-to-commit span across concurrent attempts.
	// Without the lock two runs could both observe "not installed" and
	// race on the commit.
	lock := flock.New(filepath.Join(ins.root, lockFileName))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		return ins.fail(StageProbingConnectivity, nil,
			"Another installation attempt is in progress. Please try again in a moment.")
	}
	defer lock.Unlock()

	desc := req.Descriptor()
	st, err := ins.factory.Open(ctx, desc)
	if err != nil {
		invalid, message := describeConnError(err)
		return ins.fail(StageProbingConnectivity, invalid, message)
	}
	defer st.Close()

	if err := ProvisionDirs(ins.root, ins.log); err != nil {
		message := err.Error()
		var fsErr *FSError
		if errors.As(err, &fsErr) {
			message = fsErr.Message()
		}
		return ins.fail(StageProvisioningFilesystem, nil, message)
	}
	if err := EnsureAccessFile(ins.root); err != nil {
		ins.log.Error("Access file creation failed", "err", err)
		return ins.fail(StageProvisioningFilesystem, nil,
			"Unable to create /"+accessFileName+". Make sure the deployment root is writeable and try again.")
	}

	if err := CommitConfig(ins.root, desc); err != nil {
		if errors.Is(err, ErrConfigExists) {
			// The artifact belongs to a completed installation; it is
			// not ours to remove.
			return ins.fail(StageCommittingConfig, nil, "Quillpress is already installed.")
		}
		return ins.fail(StageCommittingConfig, nil,
			"Unable to create /"+ConfigFileName+". Make sure the deployment root is writeable and try again.")
	}

	if err := st.InitSchema(ctx); err != nil {
		ins.rollback()
		return ins.fail(StageInitializingSchema, nil,
			"Unable to create the database schema: "+err.Error())
	}

	if failure := ins.seed(ctx, st, req); failure != nil {
		ins.rollback()
		return ins.fail(StageSeedingData, failure.invalid, failure.message)
	}

	redirect := AdminPath
	sess, err := ins.sessions.Login(ctx, st, req.Username, req.Password)
	if err != nil {
		// Best-effort: the instance is fully provisioned, the operator
		// just has to log in manually.
		ins.log.Warn("Owner login failed after installation", "err", err)
		redirect = LoginPath
	}

	ins.log.Info("Installation complete",
		slog.String("owner", req.Username),
		slog.String("driver", desc.Driver))
	return Outcome{
		Success:  true,
		Stage:    StageComplete,
		Redirect: redirect,
		Session:  sess,
	}
}

type seedFailure struct {
	invalid []string
	message string
}

// seed inserts the baseline records in fixed order: all settings, the
// owner identity, the default tag, then the default posts.
func (ins *Installer) seed(ctx context.Context, st interfaces.Store, req Request) *seedFailure {
	now := ins.now()

	for _, s := range defaultSettings() {
		if err := st.CreateSetting(ctx, s.Name, s.Value); err != nil {
			return &seedFailure{message: "Unable to insert default settings: " + err.Error()}
		}
	}

	if _, reserved := reservedSlugs[req.Username]; reserved {
		return &seedFailure{invalid: []string{"username"}, message: msgReservedUsername}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return &seedFailure{message: "Unable to create the owner user: " + err.Error()}
	}
	owner := interfaces.User{
		Slug:         req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         "owner",
		Created:      now,
	}
	if err := st.CreateUser(ctx, owner); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateSlug) {
			return &seedFailure{invalid: []string{"username"}, message: msgReservedUsername}
		}
		return &seedFailure{message: "Unable to create the owner user: " + err.Error()}
	}

	if err := st.CreateTag(ctx, seedTag(now)); err != nil {
		return &seedFailure{message: "Unable to insert the default tag: " + err.Error()}
	}

	for _, post := range seedPosts(req.Username, now) {
		if err := st.CreatePost(ctx, post); err != nil {
			return &seedFailure{message: "Unable to insert the default posts: " + err.Error()}
		}
	}
	return nil
}

// rollback removes the connection configuration so the operator can
// retry. Called for every failure at or past the commit point.
func (ins *Installer) rollback() {
	path := ConfigPath(ins.root)
	if err := os.Remove(path); err != nil {
		ins.log.Error("Rollback could not remove connection configuration",
			slog.String("path", path), "err", err)
		return
	}
	ins.log.Info("Rolled back connection configuration", slog.String("path", path))
}

func (ins *Installer) fail(stage Stage, invalid []string, message string) Outcome {
	ins.log.Warn("Installation failed",
		slog.String("stage", stage.String()),
		slog.String("message", message))
	return Outcome{Stage: stage, Invalid: invalid, Message: message}
}

// describeConnError maps a classified connection error onto the fields
// the operator should correct and the message shown to them.
func describeConnError(err error) (invalid []string, message string) {
	var connErr *interfaces.ConnError
	if !errors.As(err, &connErr) {
		return []string{"db-host", "db-user", "db-password", "db-database"}, err.Error()
	}
	switch connErr.Kind {
	case interfaces.ConnAuth:
		return []string{"db-user", "db-password"},
			"The database rejected this user or password. Make sure the user exists and has access to the specified database."
	case interfaces.ConnNotFound:
		return []string{"db-database"}, "The specified database does not exist."
	case interfaces.ConnTimeout:
		return []string{"db-host"}, "The database is not responding. Is the host correct?"
	default:
		return []string{"db-host", "db-user", "db-password", "db-database"}, connErr.Err.Error()
	}
}
