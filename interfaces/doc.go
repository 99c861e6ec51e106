// Package interfaces defines the core interfaces and types shared by the
// Quillpress installer components. It provides the contract between the
// orchestration layer, the storage drivers, and the session layer without
// implementation details.
//
// # Connection descriptors
//
// A Descriptor carries the resolved, defaulted connection parameters for
// the persistent store. Descriptors are immutable once constructed; the
// installer builds one from validated operator input and hands it to the
// storage factory and the config committer.
//
// # Stores
//
// Store is the narrow persistence surface the installer needs: schema
// initialization plus insertion of settings, users, tags, and posts, and
// the few reads the session layer and tests rely on. Drivers live in the
// storage package and are selected by Descriptor.Driver.
//
// # Error classification
//
// Connection failures are classified into a closed set of ConnError
// kinds (ConnAuth, ConnNotFound, ConnTimeout, ConnOther). Callers must
// branch on the kind, never on message substrings: the kind decides
// which input fields the operator is asked to correct.
package interfaces
