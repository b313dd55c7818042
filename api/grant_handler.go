package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/casetrail/ability"
	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/id"
)

func (a *API) registerGrantRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("grants"))

	if err := g.POST("/memberships/:membershipId/grants", a.createGrant,
		forge.WithSummary("Add grant"),
		forge.WithDescription("Appends a custom permission grant to a membership. Grants evaluate in creation order; later grants win."),
		forge.WithOperationID("createGrant"),
		forge.WithRequestSchema(CreateGrantRequest{}),
		forge.WithCreatedResponse(&grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/memberships/:membershipId/grants", a.listMembershipGrants,
		forge.WithSummary("List membership grants"),
		forge.WithDescription("Lists a membership's grants in evaluation order."),
		forge.WithOperationID("listMembershipGrants"),
		forge.WithResponseSchema(http.StatusOK, "Ordered grant list", []*grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/grants/:grantId", a.getGrant,
		forge.WithSummary("Get grant"),
		forge.WithDescription("Returns details of a specific grant."),
		forge.WithOperationID("getGrant"),
		forge.WithResponseSchema(http.StatusOK, "Grant details", &grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/grants", a.listGrants,
		forge.WithSummary("List grants"),
		forge.WithDescription("Lists grants with optional filters."),
		forge.WithOperationID("listGrants"),
		forge.WithRequestSchema(ListGrantsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Grant list", []*grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/grants/:grantId", a.deleteGrant,
		forge.WithSummary("Delete grant"),
		forge.WithDescription("Deletes a grant. Remaining grants keep their evaluation order."),
		forge.WithOperationID("deleteGrant"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) createGrant(ctx forge.Context, req *CreateGrantRequest) (*grant.Grant, error) {
	membershipID, err := id.ParseMembershipID(ctx.Param("membershipId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid membership ID: %v", err))
	}

	if _, err := ability.ParseAction(req.Action); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	if _, err := ability.ParseSubjectType(req.Subject); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	if req.Effect != string(grant.EffectAllow) && req.Effect != string(grant.EffectDeny) {
		return nil, forge.BadRequest(fmt.Sprintf("invalid effect %q: must be allow or deny", req.Effect))
	}

	cond := toCondition(req.Condition)
	if err := cond.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	now := time.Now()
	g := &grant.Grant{
		ID:           id.NewGrantID(),
		MembershipID: membershipID,
		Action:       req.Action,
		Subject:      req.Subject,
		Effect:       grant.Effect(req.Effect),
		Condition:    cond,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.eng.Store().CreateGrant(ctx.Context(), g); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitGrantCreated(ctx.Context(), g)

	return g, ctx.JSON(http.StatusCreated, g)
}

func (a *API) getGrant(ctx forge.Context, _ *GetGrantRequest) (*grant.Grant, error) {
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}

	g, err := a.eng.Store().GetGrant(ctx.Context(), grantID)
	if err != nil {
		return nil, mapError(err)
	}

	return g, ctx.JSON(http.StatusOK, g)
}

func (a *API) listMembershipGrants(ctx forge.Context, _ *GetMembershipRequest) ([]*grant.Grant, error) {
	membershipID, err := id.ParseMembershipID(ctx.Param("membershipId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid membership ID: %v", err))
	}

	grants, err := a.eng.Store().ListGrantsForMembership(ctx.Context(), membershipID)
	if err != nil {
		return nil, mapError(err)
	}

	return grants, ctx.JSON(http.StatusOK, grants)
}

func (a *API) listGrants(ctx forge.Context, req *ListGrantsRequest) ([]*grant.Grant, error) {
	filter := &grant.ListFilter{
		Subject: req.Subject,
		Effect:  grant.Effect(req.Effect),
		Limit:   defaultLimit(req.Limit),
		Offset:  req.Offset,
	}
	if req.MembershipID != "" {
		membershipID, err := id.ParseMembershipID(req.MembershipID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid membership_id: %v", err))
		}
		filter.MembershipID = &membershipID
	}

	grants, err := a.eng.Store().ListGrants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return grants, ctx.JSON(http.StatusOK, grants)
}

func (a *API) deleteGrant(ctx forge.Context, _ *GetGrantRequest) (*struct{}, error) {
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}

	if err := a.eng.Store().DeleteGrant(ctx.Context(), grantID); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitGrantDeleted(ctx.Context(), grantID)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func toCondition(preds []PredicateBody) grant.Condition {
	if len(preds) == 0 {
		return grant.Always
	}
	cond := grant.Condition{Preds: make([]grant.Predicate, len(preds))}
	for i, p := range preds {
		cond.Preds[i] = grant.Predicate{
			Field: p.Field,
			Op:    grant.Op(p.Op),
			Value: p.Value,
		}
	}
	return cond
}
