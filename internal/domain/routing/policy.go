// Package routing decides whether a navigation to a route is allowed for the
// current session, and where to send the user when it is not.
package routing

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
)

// Rule protects every path under Prefix. When Roles is non-empty, only those
// roles may enter; an empty Roles list admits any authenticated user. An
// optional Condition is a CEL expression evaluated against the session,
// which must come out true for access to be granted.
type Rule struct {
	Prefix    string   `yaml:"prefix"`
	Roles     []string `yaml:"roles"`
	Condition string   `yaml:"condition"`

	roles []auth.Role
}

// RequiredRoles returns the normalized role set of the rule.
func (r *Rule) RequiredRoles() []auth.Role {
	return r.roles
}

// Policy is an ordered set of route protection rules. Matching picks the
// longest prefix, so a specific rule always wins over a broader one.
type Policy struct {
	Rules []Rule `yaml:"rules"`
}

// LoadPolicy reads and validates a route policy from a YAML file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse route policy %s: %w", path, err)
	}
	if err := p.normalize(); err != nil {
		return nil, fmt.Errorf("invalid route policy %s: %w", path, err)
	}
	return &p, nil
}

// DefaultPolicy returns the built-in protection rules used when no policy
// file is configured: each role area admits only its own role, and the
// employee directory pages admit any authenticated user.
func DefaultPolicy() *Policy {
	p := &Policy{Rules: []Rule{
		{Prefix: "/admin", Roles: []string{string(auth.RoleAdmin)}},
		{Prefix: "/hr", Roles: []string{string(auth.RoleHR)}},
		{Prefix: "/manager", Roles: []string{string(auth.RoleManager)}},
		{Prefix: "/employee", Roles: []string{string(auth.RoleEmployee)}},
		{Prefix: "/profile"},
		{Prefix: "/directory"},
	}}
	if err := p.normalize(); err != nil {
		panic(err)
	}
	return p
}

// normalize validates prefixes, normalizes role markers once at the load
// boundary, and orders rules longest-prefix-first.
func (p *Policy) normalize() error {
	for i := range p.Rules {
		rule := &p.Rules[i]
		if rule.Prefix == "" || !strings.HasPrefix(rule.Prefix, "/") {
			return fmt.Errorf("rule %d: prefix %q must start with /", i, rule.Prefix)
		}
		rule.roles = rule.roles[:0]
		for _, raw := range rule.Roles {
			role := auth.NormalizeRole(raw)
			if !role.IsValid() {
				return fmt.Errorf("rule %d (%s): unknown role %q", i, rule.Prefix, raw)
			}
			rule.roles = append(rule.roles, role)
		}
	}
	sort.SliceStable(p.Rules, func(a, b int) bool {
		return len(p.Rules[a].Prefix) > len(p.Rules[b].Prefix)
	})
	return nil
}

// Match returns the most specific rule covering path, or nil when the path
// is unprotected. A prefix matches only on segment boundaries, so /admin
// does not cover /administration.
func (p *Policy) Match(path string) *Rule {
	for i := range p.Rules {
		rule := &p.Rules[i]
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
			return rule
		}
	}
	return nil
}

// DefaultLanding returns the post-login landing page for a role.
func DefaultLanding(role auth.Role) string {
	switch auth.NormalizeRole(string(role)) {
	case auth.RoleAdmin:
		return "/admin"
	case auth.RoleHR:
		return "/hr"
	case auth.RoleManager:
		return "/manager"
	case auth.RoleEmployee:
		return "/employee"
	default:
		return "/"
	}
}
