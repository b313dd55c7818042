package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/casetrail/ability"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/principal"
)

func (a *API) registerPrincipalRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("principals"))

	if err := g.POST("/principals", a.createPrincipal,
		forge.WithSummary("Create principal"),
		forge.WithDescription("Creates a new internal staff principal."),
		forge.WithOperationID("createPrincipal"),
		forge.WithRequestSchema(CreatePrincipalRequest{}),
		forge.WithCreatedResponse(&principal.Principal{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/principals/:principalId", a.getPrincipal,
		forge.WithSummary("Get principal"),
		forge.WithDescription("Returns details of a specific principal."),
		forge.WithOperationID("getPrincipal"),
		forge.WithResponseSchema(http.StatusOK, "Principal details", &principal.Principal{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/principals", a.listPrincipals,
		forge.WithSummary("List principals"),
		forge.WithDescription("Lists principals with optional filters."),
		forge.WithOperationID("listPrincipals"),
		forge.WithRequestSchema(ListPrincipalsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Principal list", []*principal.Principal{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/principals/:principalId/roles", a.setPrincipalRoles,
		forge.WithSummary("Set principal roles"),
		forge.WithDescription("Replaces the principal's static role tags."),
		forge.WithOperationID("setPrincipalRoles"),
		forge.WithRequestSchema(SetRolesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated principal", &principal.Principal{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/principals/:principalId", a.deactivatePrincipal,
		forge.WithSummary("Deactivate principal"),
		forge.WithDescription("Deactivates a principal. Deactivated principals fail every check."),
		forge.WithOperationID("deactivatePrincipal"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) createPrincipal(ctx forge.Context, req *CreatePrincipalRequest) (*principal.Principal, error) {
	if req.Email == "" {
		return nil, forge.BadRequest("email is required")
	}
	if req.FirstName == "" {
		return nil, forge.BadRequest("first_name is required")
	}
	for _, tag := range req.Roles {
		if _, err := ability.ParseRoleTag(tag); err != nil {
			return nil, forge.BadRequest(err.Error())
		}
	}

	now := time.Now()
	p := &principal.Principal{
		ID:        id.NewPrincipalID(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Telephone: req.Telephone,
		Roles:     req.Roles,
		IsActive:  true,
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := a.eng.Store().CreatePrincipal(ctx.Context(), p); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitPrincipalCreated(ctx.Context(), p)

	return p, ctx.JSON(http.StatusCreated, p)
}

func (a *API) getPrincipal(ctx forge.Context, _ *GetPrincipalRequest) (*principal.Principal, error) {
	principalID, err := id.ParsePrincipalID(ctx.Param("principalId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid principal ID: %v", err))
	}

	p, err := a.eng.Store().GetPrincipal(ctx.Context(), principalID)
	if err != nil {
		return nil, mapError(err)
	}

	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) listPrincipals(ctx forge.Context, req *ListPrincipalsRequest) ([]*principal.Principal, error) {
	filter := &principal.ListFilter{
		Role:     req.Role,
		IsActive: req.IsActive,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	principals, err := a.eng.Store().ListPrincipals(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return principals, ctx.JSON(http.StatusOK, principals)
}

func (a *API) setPrincipalRoles(ctx forge.Context, req *SetRolesRequest) (*principal.Principal, error) {
	principalID, err := id.ParsePrincipalID(ctx.Param("principalId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid principal ID: %v", err))
	}
	for _, tag := range req.Roles {
		if _, err := ability.ParseRoleTag(tag); err != nil {
			return nil, forge.BadRequest(err.Error())
		}
	}

	if err := a.eng.Store().SetPrincipalRoles(ctx.Context(), principalID, req.Roles); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitRolesChanged(ctx.Context(), principalID, req.Roles)

	p, err := a.eng.Store().GetPrincipal(ctx.Context(), principalID)
	if err != nil {
		return nil, mapError(err)
	}
	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) deactivatePrincipal(ctx forge.Context, _ *GetPrincipalRequest) (*struct{}, error) {
	principalID, err := id.ParsePrincipalID(ctx.Param("principalId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid principal ID: %v", err))
	}

	if err := a.eng.Store().DeactivatePrincipal(ctx.Context(), principalID); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitPrincipalDeactivated(ctx.Context(), principalID)

	return nil, ctx.NoContent(http.StatusNoContent)
}
