// Package install implements the one-time provisioning workflow that
// takes a blank Quillpress deployment to a working, fully seeded
// instance.
//
// The Installer drives a strictly linear state machine:
//
//	Idle → Validating → ProbingConnectivity → ProvisioningFilesystem →
//	CommittingConfig → InitializingSchema → SeedingData →
//	EstablishingSession → Complete
//
// Each stage runs only after the previous one succeeded; the first
// failure short-circuits the run. The workflow's commit point is the
// connection configuration written during CommittingConfig: once that
// artifact exists, any later failure must remove it again so the
// operator can retry from a clean slate. Failures before the commit
// point need no compensation — directory creation is idempotent and
// nothing else durable has happened yet.
//
// The artifact's presence doubles as the installed bit: the HTTP layer
// consults IsInstalled to refuse further provisioning requests. An
// advisory file lock additionally serializes concurrent install
// attempts against the same deployment root.
//
// Session establishment is deliberately best-effort. If logging the new
// owner in fails, the installation still reports success — with the
// redirect pointed at the login page instead of the admin area — and
// the failure is only logged.
package install
