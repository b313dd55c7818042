package api

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for an authorization check.
type CheckRequest struct {
	PrincipalID string         `json:"principal_id" description:"Principal identifier"`
	Action      string         `json:"action" description:"Requested action (create, read, update, delete)"`
	Subject     string         `json:"subject" description:"Subject type tag"`
	Attributes  map[string]any `json:"attributes,omitempty" description:"Target instance attributes; omit for a type-level check"`
}

// BatchCheckRequest contains multiple checks.
type BatchCheckRequest struct {
	Checks []CheckRequest `json:"checks" description:"List of authorization checks"`
}

// CompiledRulesRequest is the path parameter for rule introspection.
type CompiledRulesRequest struct {
	PrincipalID string `path:"principalId" description:"Principal ID"`
}

// ──────────────────────────────────────────────────
// Principal requests
// ──────────────────────────────────────────────────

// CreatePrincipalRequest is the body for creating a principal.
type CreatePrincipalRequest struct {
	Email     string         `json:"email" description:"Email address (unique)"`
	FirstName string         `json:"first_name" description:"First name"`
	LastName  string         `json:"last_name,omitempty" description:"Last name"`
	Telephone string         `json:"telephone,omitempty" description:"Telephone number"`
	Roles     []string       `json:"roles,omitempty" description:"Static role tags (ADMIN, ANALYST, USER)"`
	Metadata  map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetPrincipalRequest is the path parameter for getting a principal.
type GetPrincipalRequest struct {
	PrincipalID string `path:"principalId" description:"Principal ID"`
}

// SetRolesRequest is the body for replacing a principal's role tags.
type SetRolesRequest struct {
	Roles []string `json:"roles" description:"Full replacement set of role tags"`
}

// ListPrincipalsRequest holds query parameters for listing principals.
type ListPrincipalsRequest struct {
	Role     string `query:"role" description:"Filter by role tag"`
	IsActive *bool  `query:"is_active" description:"Filter by active flag"`
	Search   string `query:"search" description:"Search by email or name"`
	Limit    int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Membership requests
// ──────────────────────────────────────────────────

// CreateMembershipRequest is the body for creating a membership.
type CreateMembershipRequest struct {
	PrincipalID string         `json:"principal_id" description:"Principal to enroll"`
	GroupID     string         `json:"group_id" description:"Group identifier"`
	Role        string         `json:"role" description:"Group role (OWNER, OFFICER, MEMBER)"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetMembershipRequest is the path parameter for getting a membership.
type GetMembershipRequest struct {
	MembershipID string `path:"membershipId" description:"Membership ID"`
}

// ChangeMembershipRoleRequest is the body for changing a membership role.
type ChangeMembershipRoleRequest struct {
	Role string `json:"role" description:"New group role"`
}

// ListMembershipsRequest holds query parameters for listing memberships.
type ListMembershipsRequest struct {
	PrincipalID string `query:"principal_id" description:"Filter by principal"`
	GroupID     string `query:"group_id" description:"Filter by group"`
	Role        string `query:"role" description:"Filter by group role"`
	Limit       int    `query:"limit" description:"Maximum results"`
	Offset      int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Grant requests
// ──────────────────────────────────────────────────

// CreateGrantRequest is the body for adding a custom grant to a membership.
type CreateGrantRequest struct {
	Action    string          `json:"action" description:"Action tag (create, read, update, delete, manage)"`
	Subject   string          `json:"subject" description:"Subject type tag"`
	Effect    string          `json:"effect" description:"allow or deny"`
	Condition []PredicateBody `json:"condition,omitempty" description:"Structural predicates; omit for always-true"`
}

// PredicateBody is one structural predicate on the wire.
type PredicateBody struct {
	Field string `json:"field" description:"Attribute name"`
	Op    string `json:"op" description:"Predicate operator (eq, in)"`
	Value any    `json:"value" description:"Comparison value"`
}

// GetGrantRequest is the path parameter for getting a grant.
type GetGrantRequest struct {
	GrantID string `path:"grantId" description:"Grant ID"`
}

// ListGrantsRequest holds query parameters for listing grants.
type ListGrantsRequest struct {
	MembershipID string `query:"membership_id" description:"Filter by membership"`
	Subject      string `query:"subject" description:"Filter by subject type"`
	Effect       string `query:"effect" description:"Filter by effect"`
	Limit        int    `query:"limit" description:"Maximum results"`
	Offset       int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Applicant requests
// ──────────────────────────────────────────────────

// CreateApplicantRequest is the body for creating an applicant.
type CreateApplicantRequest struct {
	Telephone string `json:"telephone" description:"Telephone number (unique)"`
	Email     string `json:"email,omitempty" description:"Email address"`
	FirstName string `json:"first_name,omitempty" description:"First name"`
	LastName  string `json:"last_name,omitempty" description:"Last name"`
}

// GetApplicantRequest is the path parameter for getting an applicant.
type GetApplicantRequest struct {
	ApplicantID string `path:"applicantId" description:"Applicant ID"`
}

// ListApplicantsRequest holds query parameters for listing applicants.
type ListApplicantsRequest struct {
	IsActive *bool  `query:"is_active" description:"Filter by active flag"`
	Search   string `query:"search" description:"Search by telephone, email or name"`
	Limit    int    `query:"limit" description:"Maximum results"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Check log requests
// ──────────────────────────────────────────────────

// ListCheckLogsRequest holds query parameters for the decision log.
type ListCheckLogsRequest struct {
	Track       string `query:"track" description:"Filter by track (principal, applicant)"`
	PrincipalID string `query:"principal_id" description:"Filter by caller ID"`
	Action      string `query:"action" description:"Filter by action"`
	Subject     string `query:"subject" description:"Filter by subject type"`
	GroupID     string `query:"group_id" description:"Filter by group"`
	Decision    string `query:"decision" description:"Filter by decision code"`
	After       string `query:"after" description:"Only entries after this time (RFC3339)"`
	Before      string `query:"before" description:"Only entries before this time (RFC3339)"`
	Limit       int    `query:"limit" description:"Maximum results"`
	Offset      int    `query:"offset" description:"Results to skip"`
}

// PurgeCheckLogsRequest is the body for purging old decision logs.
type PurgeCheckLogsRequest struct {
	Before string `json:"before" description:"Delete entries created before this time (RFC3339)"`
}
