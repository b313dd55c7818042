package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/casetrail/ability/applicant"
	"github.com/casetrail/ability/id"
)

func (a *API) registerApplicantRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("applicants"))

	if err := g.POST("/applicants", a.createApplicant,
		forge.WithSummary("Create applicant"),
		forge.WithDescription("Creates a new external applicant identity."),
		forge.WithOperationID("createApplicant"),
		forge.WithRequestSchema(CreateApplicantRequest{}),
		forge.WithCreatedResponse(&applicant.Applicant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/applicants/:applicantId", a.getApplicant,
		forge.WithSummary("Get applicant"),
		forge.WithDescription("Returns details of a specific applicant."),
		forge.WithOperationID("getApplicant"),
		forge.WithResponseSchema(http.StatusOK, "Applicant details", &applicant.Applicant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/applicants", a.listApplicants,
		forge.WithSummary("List applicants"),
		forge.WithDescription("Lists applicants with optional filters."),
		forge.WithOperationID("listApplicants"),
		forge.WithRequestSchema(ListApplicantsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Applicant list", []*applicant.Applicant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/applicants/:applicantId", a.deactivateApplicant,
		forge.WithSummary("Deactivate applicant"),
		forge.WithDescription("Deactivates an applicant. Deactivated applicants cannot authenticate."),
		forge.WithOperationID("deactivateApplicant"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) createApplicant(ctx forge.Context, req *CreateApplicantRequest) (*applicant.Applicant, error) {
	if req.Telephone == "" {
		return nil, forge.BadRequest("telephone is required")
	}

	now := time.Now()
	ap := &applicant.Applicant{
		ID:        id.NewApplicantID(),
		Telephone: req.Telephone,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := a.eng.Store().CreateApplicant(ctx.Context(), ap); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitApplicantCreated(ctx.Context(), ap)

	return ap, ctx.JSON(http.StatusCreated, ap)
}

func (a *API) getApplicant(ctx forge.Context, _ *GetApplicantRequest) (*applicant.Applicant, error) {
	applicantID, err := id.ParseApplicantID(ctx.Param("applicantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid applicant ID: %v", err))
	}

	ap, err := a.eng.Store().GetApplicant(ctx.Context(), applicantID)
	if err != nil {
		return nil, mapError(err)
	}

	return ap, ctx.JSON(http.StatusOK, ap)
}

func (a *API) listApplicants(ctx forge.Context, req *ListApplicantsRequest) ([]*applicant.Applicant, error) {
	filter := &applicant.ListFilter{
		IsActive: req.IsActive,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	applicants, err := a.eng.Store().ListApplicants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return applicants, ctx.JSON(http.StatusOK, applicants)
}

func (a *API) deactivateApplicant(ctx forge.Context, _ *GetApplicantRequest) (*struct{}, error) {
	applicantID, err := id.ParseApplicantID(ctx.Param("applicantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid applicant ID: %v", err))
	}

	if err := a.eng.Store().DeactivateApplicant(ctx.Context(), applicantID); err != nil {
		return nil, mapError(err)
	}

	a.eng.Plugins().EmitApplicantDeactivated(ctx.Context(), applicantID)

	return nil, ctx.NoContent(http.StatusNoContent)
}
