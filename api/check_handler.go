package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/casetrail/ability"
	"github.com/casetrail/ability/id"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates whether the principal can perform the action on the subject type."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/batch-check", a.batchCheck,
		forge.WithSummary("Batch authorization check"),
		forge.WithDescription("Evaluates multiple authorization checks in one request."),
		forge.WithOperationID("authzBatchCheck"),
		forge.WithRequestSchema(BatchCheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Batch results", BatchCheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/rules/:principalId", a.compiledRules,
		forge.WithSummary("Compiled rules"),
		forge.WithDescription("Returns the principal's compiled rule list in evaluation order."),
		forge.WithOperationID("authzCompiledRules"),
		forge.WithResponseSchema(http.StatusOK, "Ordered rule list", ability.RuleList{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	q, principalID, err := toQuery(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Check(ctx.Context(), principalID, q)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	q, principalID, err := toQuery(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Check(ctx.Context(), principalID, q)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) batchCheck(ctx forge.Context, req *BatchCheckRequest) (*BatchCheckResponse, error) {
	if len(req.Checks) == 0 {
		return nil, forge.BadRequest("checks cannot be empty")
	}

	results := make([]CheckResponse, len(req.Checks))
	for i := range req.Checks {
		q, principalID, err := toQuery(&req.Checks[i])
		if err != nil {
			return nil, err
		}
		result, err := a.eng.Check(ctx.Context(), principalID, q)
		if err != nil {
			return nil, mapError(err)
		}
		results[i] = *toCheckResponse(result)
	}

	resp := &BatchCheckResponse{Results: results}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) compiledRules(ctx forge.Context, _ *CompiledRulesRequest) (ability.RuleList, error) {
	principalID, err := id.ParsePrincipalID(ctx.Param("principalId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid principal ID: %v", err))
	}

	rules, err := a.eng.CompileRules(ctx.Context(), principalID)
	if err != nil {
		return nil, mapError(err)
	}

	return rules, ctx.JSON(http.StatusOK, rules)
}

func toQuery(r *CheckRequest) (ability.Query, id.PrincipalID, error) {
	if r.PrincipalID == "" || r.Action == "" || r.Subject == "" {
		return ability.Query{}, id.Nil, forge.BadRequest("principal_id, action, and subject are required")
	}

	principalID, err := id.ParsePrincipalID(r.PrincipalID)
	if err != nil {
		return ability.Query{}, id.Nil, forge.BadRequest(fmt.Sprintf("invalid principal ID: %v", err))
	}
	action, err := ability.ParseAction(r.Action)
	if err != nil {
		return ability.Query{}, id.Nil, forge.BadRequest(err.Error())
	}
	subject, err := ability.ParseSubjectType(r.Subject)
	if err != nil {
		return ability.Query{}, id.Nil, forge.BadRequest(err.Error())
	}

	return ability.Query{
		Action:     action,
		Subject:    subject,
		Attributes: r.Attributes,
	}, principalID, nil
}

func toCheckResponse(r *ability.Result) *CheckResponse {
	resp := &CheckResponse{
		Allowed:    r.Allowed,
		Decision:   string(r.Decision),
		Reason:     r.Reason,
		EvalTimeNs: r.EvalTimeNs,
	}
	if r.MatchedBy != nil {
		resp.MatchedBy = &MatchInfo{
			Source: r.MatchedBy.Source,
			RuleID: r.MatchedBy.RuleID,
			Detail: r.MatchedBy.Detail,
		}
	}
	return resp
}
