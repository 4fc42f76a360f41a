package application

import "errors"

// Validation failures returned by the account flows. These are user-facing
// messages; the HTTP layer maps each one to a field in the error details.
// Anything else bubbling out of a flow (constraint races, connection loss)
// is an infrastructure fault and is not translated.
var (
	ErrEmailTaken         = errors.New("Email already exists.")
	ErrUsernameTaken      = errors.New("Username already exists.")
	ErrPasswordTooShort   = errors.New("Password is too short.")
	ErrPasswordMismatch   = errors.New("Passwords don't match.")
	ErrMissingIdentifier  = errors.New("Please enter username or email to login.")
	ErrUnknownIdentifier  = errors.New("This username/email is not valid.")
	ErrInvalidCredentials = errors.New("Invalid credentials.")
	ErrUserNotActive      = errors.New("User not active.")
	ErrResetNotAllowed    = errors.New("Operation not allowed.")
)

// IsValidationError reports whether err is one of the flow validation
// failures above, as opposed to an infrastructure fault.
func IsValidationError(err error) bool {
	for _, e := range []error{
		ErrEmailTaken, ErrUsernameTaken, ErrPasswordTooShort, ErrPasswordMismatch,
		ErrMissingIdentifier, ErrUnknownIdentifier, ErrInvalidCredentials,
		ErrUserNotActive, ErrResetNotAllowed,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
