package ability

import (
	"fmt"

	"github.com/casetrail/ability/grant"
	"github.com/casetrail/ability/membership"
)

// Membership role rule tables: the subject types each role may manage or
// read inside its group.
var (
	ownerSubjects = []SubjectType{
		SubjectCompany, SubjectDocument, SubjectMembership,
		SubjectGrant, SubjectObject,
	}
	officerSubjects = []SubjectType{
		SubjectDocument, SubjectMembership, SubjectObject,
	}
	memberSubjects = []SubjectType{
		SubjectDocument, SubjectObject,
	}
)

// Compile expands a snapshot into a flat ordered rule list. It is pure
// and deterministic: the same snapshot always yields the same list.
//
// Emission order, which the evaluator's last-match-wins scan depends on:
//
//  1. self rules (READ/UPDATE on the principal's own record);
//  2. static role rules in fixed priority order (ADMIN, ANALYST, USER);
//  3. per membership, in the snapshot's order: the membership role's
//     group-scoped rules, then the membership's custom grants in
//     declaration order.
//
// MANAGE is kept as-is; the evaluator expands the alias. Unknown role,
// action, or subject tags in stored records fail compilation instead of
// being skipped.
func Compile(snap *Snapshot) (RuleList, error) {
	if snap == nil || snap.Principal == nil {
		return nil, fmt.Errorf("%w: empty snapshot", ErrPrincipalNotFound)
	}

	p := snap.Principal
	selfID := p.ID.String()

	rules := make(RuleList, 0, 2+len(snap.Memberships)*6)

	// 1. Self rules. Every principal may read and update its own record.
	rules = append(rules,
		Rule{
			Action:    ActionRead,
			Subject:   SubjectPrincipal,
			Effect:    grant.EffectAllow,
			Condition: grant.Equals("id", selfID),
			Source:    SourceSelf,
			SourceID:  selfID,
		},
		Rule{
			Action:    ActionUpdate,
			Subject:   SubjectPrincipal,
			Effect:    grant.EffectAllow,
			Condition: grant.Equals("id", selfID),
			Source:    SourceSelf,
			SourceID:  selfID,
		},
	)

	// 2. Static roles in priority order, not storage order.
	held := make(map[RoleTag]bool, len(p.Roles))
	for _, raw := range p.Roles {
		tag, err := ParseRoleTag(raw)
		if err != nil {
			return nil, fmt.Errorf("principal %s: %w", selfID, err)
		}
		held[tag] = true
	}
	for _, tag := range rolePriority {
		if !held[tag] {
			continue
		}
		switch tag {
		case RoleAdmin:
			rules = append(rules, Rule{
				Action:   ActionManage,
				Subject:  SubjectAll,
				Effect:   grant.EffectAllow,
				Source:   SourceRole,
				SourceID: string(tag),
			})
		case RoleAnalyst:
			rules = append(rules, Rule{
				Action:   ActionRead,
				Subject:  SubjectAll,
				Effect:   grant.EffectAllow,
				Source:   SourceRole,
				SourceID: string(tag),
			})
		case RoleUser:
			// Baseline role: nothing beyond self and membership rules.
		}
	}

	// 3. Memberships, each followed by its own custom grants.
	for _, ms := range snap.Memberships {
		m := ms.Membership
		scope := grant.GroupScope(m.GroupID)

		switch m.Role {
		case membership.RoleOwner:
			for _, sub := range ownerSubjects {
				rules = append(rules, Rule{
					Action:    ActionManage,
					Subject:   sub,
					Effect:    grant.EffectAllow,
					Condition: scope,
					Source:    SourceMembership,
					SourceID:  m.ID.String(),
				})
			}
		case membership.RoleOfficer:
			for _, sub := range officerSubjects {
				rules = append(rules, Rule{
					Action:    ActionManage,
					Subject:   sub,
					Effect:    grant.EffectAllow,
					Condition: scope,
					Source:    SourceMembership,
					SourceID:  m.ID.String(),
				})
			}
		case membership.RoleMember:
			for _, sub := range memberSubjects {
				rules = append(rules, Rule{
					Action:    ActionRead,
					Subject:   sub,
					Effect:    grant.EffectAllow,
					Condition: scope,
					Source:    SourceMembership,
					SourceID:  m.ID.String(),
				})
			}
		default:
			return nil, fmt.Errorf("membership %s: %w: %q", m.ID, ErrUnknownRoleTag, m.Role)
		}

		for _, g := range ms.Grants {
			rule, err := compileGrant(g, scope)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
	}

	return rules, nil
}

// compileGrant validates a stored grant's tags and applies the default
// group-scope condition when the grant stores none.
func compileGrant(g *grant.Grant, scope grant.Condition) (Rule, error) {
	action, err := ParseAction(g.Action)
	if err != nil {
		return Rule{}, fmt.Errorf("grant %s: %w", g.ID, err)
	}
	subject, err := ParseSubjectType(g.Subject)
	if err != nil {
		return Rule{}, fmt.Errorf("grant %s: %w", g.ID, err)
	}
	cond := g.Condition
	if cond.IsAlways() {
		cond = scope
	} else if err := cond.Validate(); err != nil {
		return Rule{}, fmt.Errorf("grant %s: %w: %v", g.ID, ErrInvalidCondition, err)
	}
	return Rule{
		Action:    action,
		Subject:   subject,
		Effect:    g.Effect,
		Condition: cond,
		Source:    SourceGrant,
		SourceID:  g.ID.String(),
	}, nil
}
