package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quillpress/quillpress/defaults"
	"github.com/quillpress/quillpress/interfaces"
)

// ConfigFileName is the connection-configuration artifact at the
// deployment root. Its existence is the single bit of "installation
// committed" state the rest of the system consults.
const ConfigFileName = "database.conf"

// ErrConfigExists reports a commit attempt against a root that already
// has a connection configuration — installation already happened.
var ErrConfigExists = errors.New("connection configuration already exists")

// ConfigPath returns the artifact path for a deployment root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFileName)
}

// IsInstalled reports whether installation has been committed for the
// deployment root.
func IsInstalled(root string) bool {
	_, err := os.Stat(ConfigPath(root))
	return err == nil
}

// CommitConfig renders the connection template with the descriptor's
// fields and durably writes it at the deployment root. It refuses to
// overwrite an existing artifact. The write goes through a temporary
// file and a rename so a failure never leaves a partial artifact
// behind.
func CommitConfig(root string, desc interfaces.Descriptor) error {
	target := ConfigPath(root)
	if _, err := os.Stat(target); err == nil {
		return ErrConfigExists
	}

	rendered := strings.NewReplacer(
		"{{driver}}", desc.Driver,
		"{{host}}", desc.Host,
		"{{port}}", desc.Port,
		"{{database}}", desc.Database,
		"{{user}}", desc.User,
		"{{password}}", desc.Password,
		"{{prefix}}", desc.Prefix,
	).Replace(defaults.DatabaseTemplate())

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, []byte(rendered), 0600); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", ConfigFileName, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s into place: %w", ConfigFileName, err)
	}
	return nil
}
