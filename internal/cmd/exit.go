// Package cmd provides command implementations for the bold CLI.
package cmd

// Exit codes reported by the bold binary.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates malformed recipe, system, catalog or
	// config content.
	ExitValidationError = 2

	// ExitDuplicateName indicates a unique name claimed by two identities.
	ExitDuplicateName = 3

	// ExitResolutionError indicates a dependency that could not be resolved.
	ExitResolutionError = 4

	// ExitNotFound indicates a recipe, system or file was not found.
	ExitNotFound = 5

	// ExitHashError indicates the digest function failed.
	ExitHashError = 6
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitDuplicateName:
		return "Duplicate Name"
	case ExitResolutionError:
		return "Resolution Error"
	case ExitNotFound:
		return "Not Found"
	case ExitHashError:
		return "Hash Error"
	default:
		return "Unknown"
	}
}
