package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/membership"
)

func (a *API) registerMembershipRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("memberships"))

	if err := g.POST("/memberships", a.createMembership,
		forge.WithSummary("Create membership"),
		forge.WithDescription("Enrolls a principal in a group with a group role. A principal holds at most one membership per group."),
		forge.WithOperationID("createMembership"),
		forge.WithRequestSchema(CreateMembershipRequest{}),
		forge.WithCreatedResponse(&membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/memberships/:membershipId", a.getMembership,
		forge.WithSummary("Get membership"),
		forge.WithDescription("Returns details of a specific membership."),
		forge.WithOperationID("getMembership"),
		forge.WithResponseSchema(http.StatusOK, "Membership details", &membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/memberships", a.listMemberships,
		forge.WithSummary("List memberships"),
		forge.WithDescription("Lists memberships with optional filters."),
		forge.WithOperationID("listMemberships"),
		forge.WithRequestSchema(ListMembershipsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Membership list", []*membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/memberships/:membershipId/role", a.changeMembershipRole,
		forge.WithSummary("Change membership role"),
		forge.WithDescription("Changes the group role of a membership."),
		forge.WithOperationID("changeMembershipRole"),
		forge.WithRequestSchema(ChangeMembershipRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated membership", &membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/memberships/:membershipId", a.deleteMembership,
		forge.WithSummary("Delete membership"),
		forge.WithDescription("Deletes a membership together with its custom grants."),
		forge.WithOperationID("deleteMembership"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) createMembership(ctx forge.Context, req *CreateMembershipRequest) (*membership.Membership, error) {
	if req.PrincipalID == "" {
		return nil, forge.BadRequest("principal_id is required")
	}
	if req.GroupID == "" {
		return nil, forge.BadRequest("group_id is required")
	}

	principalID, err := id.ParsePrincipalID(req.PrincipalID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid principal_id: %v", err))
	}
	role, err := membership.ParseRole(req.Role)
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	// The principal must exist before enrollment.
	if _, err := a.eng.Store().GetPrincipal(ctx.Context(), principalID); err != nil {
		return nil, mapError(err)
	}

	now := time.Now()
	m := &membership.Membership{
		ID:          id.NewMembershipID(),
		PrincipalID: principalID,
		GroupID:     req.GroupID,
		Role:        role,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.eng.Store().CreateMembership(ctx.Context(), m); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitMembershipCreated(ctx.Context(), m)

	return m, ctx.JSON(http.StatusCreated, m)
}

func (a *API) getMembership(ctx forge.Context, _ *GetMembershipRequest) (*membership.Membership, error) {
	membershipID, err := id.ParseMembershipID(ctx.Param("membershipId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid membership ID: %v", err))
	}

	m, err := a.eng.Store().GetMembership(ctx.Context(), membershipID)
	if err != nil {
		return nil, mapError(err)
	}

	return m, ctx.JSON(http.StatusOK, m)
}

func (a *API) listMemberships(ctx forge.Context, req *ListMembershipsRequest) ([]*membership.Membership, error) {
	filter := &membership.ListFilter{
		GroupID: req.GroupID,
		Role:    membership.Role(req.Role),
		Limit:   defaultLimit(req.Limit),
		Offset:  req.Offset,
	}
	if req.PrincipalID != "" {
		principalID, err := id.ParsePrincipalID(req.PrincipalID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid principal_id: %v", err))
		}
		filter.PrincipalID = &principalID
	}

	memberships, err := a.eng.Store().ListMemberships(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return memberships, ctx.JSON(http.StatusOK, memberships)
}

func (a *API) changeMembershipRole(ctx forge.Context, req *ChangeMembershipRoleRequest) (*membership.Membership, error) {
	membershipID, err := id.ParseMembershipID(ctx.Param("membershipId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid membership ID: %v", err))
	}
	role, err := membership.ParseRole(req.Role)
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	if err := a.eng.Store().SetMembershipRole(ctx.Context(), membershipID, role); err != nil {
		return nil, mapError(err)
	}

	m, err := a.eng.Store().GetMembership(ctx.Context(), membershipID)
	if err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitMembershipRoleChanged(ctx.Context(), m)

	return m, ctx.JSON(http.StatusOK, m)
}

func (a *API) deleteMembership(ctx forge.Context, _ *GetMembershipRequest) (*struct{}, error) {
	membershipID, err := id.ParseMembershipID(ctx.Param("membershipId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid membership ID: %v", err))
	}

	if err := a.eng.Store().DeleteMembership(ctx.Context(), membershipID); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitMembershipDeleted(ctx.Context(), membershipID)

	return nil, ctx.NoContent(http.StatusNoContent)
}
