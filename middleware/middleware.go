// Package middleware provides HTTP authorization middleware for the two
// authentication tracks. Principal routes run the full rule engine via the
// guard; applicant routes enforce identity equality only. A missing or
// invalid credential is 401; a rule-engine deny or identity mismatch is 403.
package middleware

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/xraph/forge"

	"github.com/casetrail/ability"
	"github.com/casetrail/ability/id"
	"github.com/casetrail/ability/token"
)

// Require enforces a principal-track check: the Bearer token must resolve
// to an active principal whose compiled rules allow the action on the
// subject type. The route may name the target group via a "group_id" path
// parameter; when present it becomes the check's scoping attribute.
func Require(guard *ability.Guard, issuer *token.Issuer, action ability.Action, subject ability.SubjectType) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principalID, err := bearerPrincipal(ctx, issuer)
			if err != nil {
				return unauthorizedResponse(ctx)
			}

			q := ability.Query{Action: action, Subject: subject}
			if groupID := ctx.Param("group_id"); groupID != "" {
				q.Attributes = map[string]any{"group_id": groupID}
			}

			_, err = guard.Authorize(ctx.Context(), principalID, q)
			if err != nil {
				if errors.Is(err, ability.ErrUnauthorized) {
					return unauthorizedResponse(ctx)
				}
				return forbiddenResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireIdentity enforces an authenticated principal without running a
// check, for routes that only need to know who is calling.
func RequireIdentity(guard *ability.Guard, issuer *token.Issuer) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principalID, err := bearerPrincipal(ctx, issuer)
			if err != nil {
				return unauthorizedResponse(ctx)
			}
			if _, err := guard.Identify(ctx.Context(), principalID); err != nil {
				if errors.Is(err, ability.ErrUnauthorized) {
					return unauthorizedResponse(ctx)
				}
				return forbiddenResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireApplicant enforces an applicant-track check: the Bearer token must
// resolve to an active applicant whose ID equals the route's "id" path
// parameter. The rule engine is never consulted on this track.
func RequireApplicant(guard *ability.Guard, issuer *token.Issuer) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			applicantID, err := bearerApplicant(ctx, issuer)
			if err != nil {
				return unauthorizedResponse(ctx)
			}

			targetID, err := id.ParseApplicantID(ctx.Param("id"))
			if err != nil {
				return forge.BadRequest("invalid applicant id: " + err.Error())
			}

			_, err = guard.AuthorizeApplicant(ctx.Context(), applicantID, targetID)
			if err != nil {
				if errors.Is(err, ability.ErrUnauthorized) {
					return unauthorizedResponse(ctx)
				}
				return forbiddenResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// BearerPrincipalID extracts and verifies the caller's principal ID from
// the Authorization header. Handlers behind Require use this to know who
// is calling.
func BearerPrincipalID(ctx forge.Context, issuer *token.Issuer) (id.PrincipalID, error) {
	return bearerPrincipal(ctx, issuer)
}

// BearerApplicantID extracts and verifies the caller's applicant ID from
// the Authorization header.
func BearerApplicantID(ctx forge.Context, issuer *token.Issuer) (id.ApplicantID, error) {
	return bearerApplicant(ctx, issuer)
}

func bearerPrincipal(ctx forge.Context, issuer *token.Issuer) (id.PrincipalID, error) {
	claims, err := bearerClaims(ctx, issuer)
	if err != nil {
		return id.Nil, err
	}
	return id.ParsePrincipalID(claims.Subject)
}

func bearerApplicant(ctx forge.Context, issuer *token.Issuer) (id.ApplicantID, error) {
	claims, err := bearerClaims(ctx, issuer)
	if err != nil {
		return id.Nil, err
	}
	return id.ParseApplicantID(claims.Subject)
}

func bearerClaims(ctx forge.Context, issuer *token.Issuer) (*token.Claims, error) {
	header := ctx.Request().Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, token.ErrInvalidToken
	}
	return issuer.Verify(raw, token.KindAccess)
}

func unauthorizedResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(401)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "unauthorized"})
}

func forbiddenResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
