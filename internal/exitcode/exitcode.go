// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, bad position, validation alert).
	UserError = 1

	// AuthError indicates a credentials or config error, or a rejected sign-up.
	AuthError = 2

	// BackendError indicates a Firestore/API/network error.
	BackendError = 3
)
