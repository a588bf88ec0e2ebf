// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown or ambiguous task).
	UserError = 1

	// AuthError indicates missing credentials or configuration.
	AuthError = 2

	// BackendError indicates a store, network or response failure.
	BackendError = 3
)
