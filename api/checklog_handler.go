package api

import (
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/casetrail/ability/checklog"
)

func (a *API) registerCheckLogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("check-logs"))

	if err := g.GET("/check-logs", a.listCheckLogs,
		forge.WithSummary("Query check logs"),
		forge.WithDescription("Returns authorization decision audit logs with optional filters."),
		forge.WithOperationID("listCheckLogs"),
		forge.WithRequestSchema(ListCheckLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check log list", []*checklog.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/check-logs/purge", a.purgeCheckLogs,
		forge.WithSummary("Purge check logs"),
		forge.WithDescription("Deletes decision log entries older than the given time."),
		forge.WithOperationID("purgeCheckLogs"),
		forge.WithRequestSchema(PurgeCheckLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Purge result", PurgeCheckLogsResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listCheckLogs(ctx forge.Context, req *ListCheckLogsRequest) ([]*checklog.Entry, error) {
	filter := &checklog.QueryFilter{
		Track:       req.Track,
		PrincipalID: req.PrincipalID,
		Action:      req.Action,
		Subject:     req.Subject,
		GroupID:     req.GroupID,
		Decision:    req.Decision,
		Limit:       defaultLimit(req.Limit),
		Offset:      req.Offset,
	}

	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	logs, err := a.eng.Store().ListCheckLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return logs, ctx.JSON(http.StatusOK, logs)
}

func (a *API) purgeCheckLogs(ctx forge.Context, req *PurgeCheckLogsRequest) (*PurgeCheckLogsResponse, error) {
	if req.Before == "" {
		return nil, forge.BadRequest("before is required")
	}
	before, err := time.Parse(time.RFC3339, req.Before)
	if err != nil {
		return nil, forge.BadRequest("invalid before timestamp")
	}

	deleted, err := a.eng.Store().PurgeCheckLogs(ctx.Context(), before)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &PurgeCheckLogsResponse{Deleted: deleted}
	return resp, ctx.JSON(http.StatusOK, resp)
}
