package install

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/quillpress/quillpress/defaults"
)

// provisionDirs is the fixed set of directories every deployment needs,
// relative to the deployment root. Order matters only in that parents
// come before children.
var provisionDirs = []string{
	"backups",
	"content",
	"content/cache",
	"content/themes",
	"content/uploads",
}

// markerContent is written to and read back from every provisioned
// directory to prove it is read/write capable.
const markerContent = "This is a test file generated by Quillpress. You can safely delete it."

// accessFileName is the bootstrap access-control file created at the
// deployment root if absent.
const accessFileName = ".htaccess"

// FSOp identifies which step of the directory probe failed.
type FSOp int

const (
	FSOpCreate FSOp = iota
	FSOpWrite
	FSOpRead
)

// FSError reports a failed directory provision, carrying the offending
// directory (relative to the root) and the step that failed.
type FSError struct {
	Op  FSOp
	Dir string
	Err error
}

// Error returns a log-oriented description.
func (e *FSError) Error() string {
	switch e.Op {
	case FSOpCreate:
		return fmt.Sprintf("create directory %s: %v", e.Dir, e.Err)
	case FSOpWrite:
		return fmt.Sprintf("write probe in %s: %v", e.Dir, e.Err)
	default:
		return fmt.Sprintf("read probe in %s: %v", e.Dir, e.Err)
	}
}

// Unwrap exposes the underlying system error.
func (e *FSError) Unwrap() error {
	return e.Err
}

// Message returns the operator-facing description.
func (e *FSError) Message() string {
	switch e.Op {
	case FSOpCreate:
		return fmt.Sprintf("Quillpress could not create the /%s folder. Please make sure the parent directory is writeable or create it manually and try again.", e.Dir)
	case FSOpWrite:
		return fmt.Sprintf("Quillpress needs write access to /%s. Please make sure this directory is writeable and try again.", e.Dir)
	default:
		return fmt.Sprintf("Quillpress needs read access to /%s. Please make sure this directory is readable and try again.", e.Dir)
	}
}

// ProvisionDirs ensures every required directory exists and is
// read/write capable. Each directory is probed with a round trip: write
// a uniquely named marker file, read it back, compare byte for byte,
// delete it. A failed deletion is logged but not fatal.
func ProvisionDirs(root string, log *slog.Logger) error {
	for _, dir := range provisionDirs {
		path := filepath.Join(root, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return &FSError{Op: FSOpCreate, Dir: dir, Err: err}
		}

		marker := filepath.Join(path, fmt.Sprintf("quillpress-read-write-test-%d.txt", time.Now().UnixNano()))
		if err := os.WriteFile(marker, []byte(markerContent), 0644); err != nil {
			return &FSError{Op: FSOpWrite, Dir: dir, Err: err}
		}

		data, err := os.ReadFile(marker)
		if err != nil {
			return &FSError{Op: FSOpRead, Dir: dir, Err: err}
		}
		if string(data) != markerContent {
			return &FSError{Op: FSOpRead, Dir: dir, Err: fmt.Errorf("marker content mismatch")}
		}

		if err := os.Remove(marker); err != nil {
			log.Warn("Could not remove probe marker file",
				slog.String("path", marker), "err", err)
		}
	}
	return nil
}

// EnsureAccessFile writes the bootstrap access-control file at the
// deployment root from its embedded template, if it does not already
// exist.
func EnsureAccessFile(root string) error {
	path := filepath.Join(root, accessFileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(defaults.AccessRules()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", accessFileName, err)
	}
	return nil
}
