// Package errors provides coded, formatted errors for the ripple CLI and
// configuration loader.
//
// Library packages (reactive, signal, hook) return plain sentinel errors.
// This package is for the outer surfaces, where an error ends up in front
// of a person and should say what to do next.
//
// # Error Categories
//
//   - config: the config file or an environment override is invalid
//   - cli: a command could not run (bad flags, listener failure)
//   - runtime: a reactive operation failed while running a command
//
// # Error Codes
//
// Each error has a code (e.g., "R001") that maps to a short message and a
// longer explanation:
//
//	err := errors.New("R002").
//	    WithLocation("ripple.toml", 3, 13).
//	    WithSuggestion(`Use one of "debug", "info", "warn" or "error"`)
//
//	fmt.Print(err.Format())
//	// ERROR R002: Invalid log level
//	//
//	//   ripple.toml:3:13
//	//
//	//   The log level must name a slog level.
//	//
//	//   Hint: Use one of "debug", "info", "warn" or "error"
package errors
