package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Chart pipeline errors
	ErrInvalidDate = fmt.Errorf("invalid chart date")
	ErrFetch       = fmt.Errorf("failed to fetch chart page")
	ErrParse       = fmt.Errorf("failed to parse chart page")
	ErrIO          = fmt.Errorf("output failed")

	// Authentication errors
	ErrAuth             = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPI      = fmt.Errorf("API request failed")
	ErrPlaylist = fmt.Errorf("playlist update failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// PlaylistError wraps err, expected to be [ErrAuth] or [ErrAPI], so that both it and [ErrPlaylist] match with errors.Is.
func PlaylistError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPlaylist, err)
}
