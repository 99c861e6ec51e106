// Package session establishes and tracks authenticated sessions for
// Quillpress users. The installer uses it once, to log the freshly
// created owner in; the running application reuses the same manager for
// subsequent logins.
//
// Sessions are held in memory and identified by opaque UUID tokens.
// Credential verification uses bcrypt, the same scheme the owner's
// password hash was created with.
package session
