package install

import (
	"net/mail"
	"net/url"
	"regexp"
	"unicode/utf8"

	"github.com/quillpress/quillpress/interfaces"
	"github.com/quillpress/quillpress/slug"
)

// Operator-facing validation messages. When several rules fail at once,
// only the highest-priority message is returned: required fields first,
// then password length, then email format.
const (
	msgCorrectErrors  = "Please correct the highlighted errors."
	msgPasswordLength = "Passwords need to be at least eight characters."
	msgInvalidEmail   = "Please enter a valid email address."
)

// minPasswordLength is measured in runes, not bytes.
const minPasswordLength = 8

var prefixSanitizer = regexp.MustCompile(`[^A-Za-z_-]`)

// Request is the full set of operator-supplied installation fields.
// Field names mirror the flat form keys of the install request.
type Request struct {
	Name     string
	Email    string
	Username string
	Password string

	Driver     string
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUser     string
	DBPassword string
	DBPrefix   string
}

// RequestFromForm builds a Request from the flat key-value set of the
// install request.
func RequestFromForm(form url.Values) Request {
	return Request{
		Name:       form.Get("name"),
		Email:      form.Get("email"),
		Username:   form.Get("username"),
		Password:   form.Get("password"),
		Driver:     form.Get("driver"),
		DBHost:     form.Get("db-host"),
		DBPort:     form.Get("db-port"),
		DBDatabase: form.Get("db-database"),
		DBUser:     form.Get("db-user"),
		DBPassword: form.Get("db-password"),
		DBPrefix:   form.Get("db-prefix"),
	}
}

// Canonicalize returns a copy with the username forced to slug syntax,
// the table prefix restricted to safe characters, and defaults applied
// to empty connection fields.
func (r Request) Canonicalize() Request {
	r.Username = slug.Normalize(r.Username)
	r.DBPrefix = prefixSanitizer.ReplaceAllString(r.DBPrefix, "_")

	if r.Driver == "" {
		r.Driver = "sqlite"
	}
	if r.DBHost == "" {
		r.DBHost = interfaces.DefaultHost
	}
	if r.DBPort == "" {
		r.DBPort = interfaces.DefaultPort
	}
	if r.DBPrefix == "" {
		r.DBPrefix = interfaces.DefaultPrefix
	}
	return r
}

// ValidationResult reports either a fully valid request or the complete
// set of offending fields with one operator-facing message.
type ValidationResult struct {
	Invalid []string
	Message string
}

// OK reports whether validation passed.
func (v ValidationResult) OK() bool {
	return len(v.Invalid) == 0
}

// Validate checks the canonicalized request. Every rule is evaluated;
// nothing short-circuits on the first bad field. The store password is
// intentionally not required — some development stores have none.
func (r Request) Validate() ValidationResult {
	var result ValidationResult

	required := []struct {
		field string
		value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"username", r.Username},
		{"password", r.Password},
		{"db-user", r.DBUser},
		{"db-database", r.DBDatabase},
	}
	for _, f := range required {
		if f.value == "" {
			result.Invalid = append(result.Invalid, f.field)
		}
	}
	if len(result.Invalid) > 0 {
		result.Message = msgCorrectErrors
	}

	if r.Password != "" && utf8.RuneCountInString(r.Password) < minPasswordLength {
		result.Invalid = append(result.Invalid, "password")
		if result.Message == "" {
			result.Message = msgPasswordLength
		}
	}

	if r.Email != "" && !validEmail(r.Email) {
		result.Invalid = append(result.Invalid, "email")
		if result.Message == "" {
			result.Message = msgInvalidEmail
		}
	}

	return result
}

// Descriptor builds the immutable connection descriptor for the
// canonicalized request.
func (r Request) Descriptor() interfaces.Descriptor {
	return interfaces.Descriptor{
		Driver:   r.Driver,
		Host:     r.DBHost,
		Port:     r.DBPort,
		Database: r.DBDatabase,
		User:     r.DBUser,
		Password: r.DBPassword,
		Prefix:   r.DBPrefix,
		Timeout:  interfaces.ConnectTimeout,
	}
}

// validEmail applies the standard mailbox-address grammar. The address
// must stand alone, without a display name.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
