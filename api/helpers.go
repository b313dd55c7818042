package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/casetrail/ability"
	"github.com/casetrail/ability/store"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, store.ErrDuplicate) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, ability.ErrUnknownAction) || errors.Is(err, ability.ErrUnknownSubjectType) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, ability.ErrUnknownRoleTag) || errors.Is(err, ability.ErrInvalidCondition) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, ability.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, ability.ErrPrincipalNotFound) ||
		errors.Is(err, ability.ErrApplicantNotFound)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
