// Package storage provides the persistent-store drivers behind the
// interfaces.Store contract, selected through a factory keyed on the
// connection descriptor's driver field.
//
// Supported drivers:
//
//   - sqlite - embedded database, Descriptor.Database is the file path
//   - postgres - networked database via host/port/user/password
//
// # Connectivity probing
//
// Factory.Open dials the store, runs a trivial round-trip statement, and
// classifies any failure into the closed interfaces.ConnError set:
//
//   - ConnAuth: the store rejected the user or password
//   - ConnNotFound: the target database does not exist
//   - ConnTimeout: the host did not answer within the descriptor timeout
//   - ConnOther: anything else, with the driver message preserved
//
// Classification is driven by driver result codes (sqlite primary result
// codes, postgres SQLSTATE classes), never by message text.
//
// # Schema
//
// InitSchema drops and recreates the baseline tables — settings, users,
// tags, posts, and the post/tag join table — with the descriptor's table
// prefix substituted into every name. Recreating rather than creating
// lazily keeps a retried installation from tripping over tables a failed
// attempt left behind.
package storage
