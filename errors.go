package ability

import "errors"

var (
	// ErrPrincipalNotFound is returned when a principal ID does not
	// resolve to an active principal.
	ErrPrincipalNotFound = errors.New("ability: principal not found")

	// ErrApplicantNotFound is returned when an applicant ID does not
	// resolve to an active applicant.
	ErrApplicantNotFound = errors.New("ability: applicant not found")

	// ErrAccessDenied is returned when an authorization check denies.
	// Guards surface it as Forbidden.
	ErrAccessDenied = errors.New("ability: access denied")

	// ErrUnauthorized is returned when no credential, or an invalid
	// credential, is presented on a protected route.
	ErrUnauthorized = errors.New("ability: unauthorized")

	// ErrUnknownAction is returned when a stored action tag is not in
	// the closed Action enum.
	ErrUnknownAction = errors.New("ability: unknown action")

	// ErrUnknownSubjectType is returned when a stored subject tag is
	// not in the closed SubjectType enum.
	ErrUnknownSubjectType = errors.New("ability: unknown subject type")

	// ErrUnknownRoleTag is returned when a stored role tag is not in
	// the closed RoleTag enum.
	ErrUnknownRoleTag = errors.New("ability: unknown role tag")

	// ErrInvalidCondition is returned when a stored grant condition is
	// malformed.
	ErrInvalidCondition = errors.New("ability: invalid grant condition")
)
