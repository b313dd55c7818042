package applicant

import (
	"context"

	"github.com/casetrail/ability/id"
)

// Store defines persistence operations for applicants.
type Store interface {
	// CreateApplicant persists a new applicant.
	CreateApplicant(ctx context.Context, a *Applicant) error

	// GetApplicant retrieves an applicant by ID.
	GetApplicant(ctx context.Context, applicantID id.ApplicantID) (*Applicant, error)

	// GetApplicantByTelephone retrieves an applicant by telephone number.
	GetApplicantByTelephone(ctx context.Context, telephone string) (*Applicant, error)

	// UpdateApplicant persists changes to an applicant.
	UpdateApplicant(ctx context.Context, a *Applicant) error

	// DeactivateApplicant soft-disables an applicant.
	DeactivateApplicant(ctx context.Context, applicantID id.ApplicantID) error

	// ListApplicants returns applicants matching the filter.
	ListApplicants(ctx context.Context, filter *ListFilter) ([]*Applicant, error)

	// CountApplicants returns the number of applicants matching the filter.
	CountApplicants(ctx context.Context, filter *ListFilter) (int64, error)
}
