package service

import "errors"

// Errors surfaced by the services. The handler layer maps each onto an HTTP
// status. Credential and refresh failures are deliberately coarse: the
// caller learns nothing about which factor failed or why a token is dead.
var (
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrInactiveAccount is disclosed distinctly: a deactivated account is
	// an administrative state, not a credential-guessing vector.
	ErrInactiveAccount = errors.New("inactive user")

	// ErrInvalidRefresh covers missing, unknown, expired and revoked
	// refresh tokens uniformly.
	ErrInvalidRefresh = errors.New("invalid refresh token")

	// ErrWeakPassword rejects passwords shorter than the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrAlreadyVerified rejects a verification request for a verified
	// account.
	ErrAlreadyVerified = errors.New("email already verified")

	// Verification token consumption errors are distinguished on purpose;
	// they are not credential-guessing vectors and clearer errors aid
	// legitimate users. Precedence: not found, then consumed, then expired.
	ErrVerificationNotFound = errors.New("invalid token")
	ErrVerificationConsumed = errors.New("token already used")
	ErrVerificationExpired  = errors.New("token expired")

	// ErrForbidden rejects a caller whose role does not cover the resource.
	ErrForbidden = errors.New("insufficient privileges")

	// ErrLevelRange rejects proficiency levels outside 1..5.
	ErrLevelRange = errors.New("proficiency level must be between 1 and 5")

	// ErrInvalidRole rejects role values outside the known set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidCategory rejects competency categories outside the known
	// group codes.
	ErrInvalidCategory = errors.New("category must be one of CORE, LEAD, FUNC")

	// ErrSelfDelete rejects an admin deleting their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")

	// ErrManagerNotFound rejects a manager reference to a missing employee.
	ErrManagerNotFound = errors.New("manager not found")

	// ErrSelfManager rejects an employee managing themselves.
	ErrSelfManager = errors.New("employee cannot be their own manager")
)
