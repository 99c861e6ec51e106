// Package defaults embeds the fixed template documents the installer
// renders or copies into a fresh deployment: the database connection
// template, the bootstrap access-rules file, and the bodies of the four
// seed posts.
package defaults

import "embed"

//go:embed default.database.conf default.htaccess posts
var files embed.FS

// DatabaseTemplate returns the connection-descriptor template. The
// installer substitutes the {{driver}}, {{host}}, {{port}},
// {{database}}, {{user}}, {{password}}, and {{prefix}} placeholders.
func DatabaseTemplate() string {
	return mustRead("default.database.conf")
}

// AccessRules returns the bootstrap access-control file written to the
// deployment root when absent.
func AccessRules() string {
	return mustRead("default.htaccess")
}

// PostBody returns the HTML body of a seed post by name ("welcome",
// "editor", "themes", "support").
func PostBody(name string) string {
	return mustRead("posts/" + name + ".html")
}

func mustRead(name string) string {
	data, err := files.ReadFile(name)
	if err != nil {
		// The files are compiled into the binary; a miss is a build
		// defect, not a runtime condition.
		panic("defaults: missing embedded file " + name)
	}
	return string(data)
}
