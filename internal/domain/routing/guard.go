package routing

import (
	"context"
	"log/slog"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
)

// LoginPath is where unauthenticated navigations are redirected.
const LoginPath = "/login"

// Action is the outcome class of a guard decision.
type Action int

const (
	// ActionAllow admits the navigation.
	ActionAllow Action = iota
	// ActionWait defers the decision: session restoration has not settled
	// yet, and the caller must neither admit nor redirect.
	ActionWait
	// ActionLoginRedirect sends the user to the login page, preserving the
	// attempted path for post-login return.
	ActionLoginRedirect
	// ActionRoleRedirect sends an authenticated user whose role does not
	// satisfy the route to their own landing page.
	ActionRoleRedirect
)

// String returns a string representation of the Action.
func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionWait:
		return "wait"
	case ActionLoginRedirect:
		return "login_redirect"
	case ActionRoleRedirect:
		return "role_redirect"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for a navigation. Target is set for the
// redirect actions; ReturnTo carries the originally attempted path on a
// login redirect.
type Decision struct {
	Action   Action
	Target   string
	ReturnTo string
	Reason   string
}

// Session is the slice of the session controller the guard consults.
type Session interface {
	Loading() bool
	IsAuthenticated() bool
	CurrentUser() (auth.User, bool)
}

// ConditionEvaluator evaluates a rule's CEL condition against the request
// variables.
type ConditionEvaluator interface {
	Evaluate(ctx context.Context, expr string, vars map[string]any) (bool, error)
}

// Guard makes pure route-protection decisions from the session state and the
// route policy. It navigates nothing itself; callers act on the Decision.
type Guard struct {
	policy *Policy
	sess   Session
	eval   ConditionEvaluator
	logger *slog.Logger
}

// NewGuard builds a guard over the given policy. eval may be nil when the
// policy carries no conditions.
func NewGuard(policy *Policy, sess Session, eval ConditionEvaluator, logger *slog.Logger) *Guard {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Guard{policy: policy, sess: sess, eval: eval, logger: logger}
}

// Decide evaluates a navigation to path. Order matters: an unsettled session
// defers, an unauthenticated one redirects to login, and only then is the
// role requirement checked, so an unauthenticated user is never bounced to a
// role landing page.
func (g *Guard) Decide(ctx context.Context, path string) Decision {
	if g.sess.Loading() {
		return Decision{Action: ActionWait, Reason: "session restoring"}
	}

	rule := g.policy.Match(path)
	if rule == nil {
		return Decision{Action: ActionAllow}
	}

	if !g.sess.IsAuthenticated() {
		return Decision{
			Action:   ActionLoginRedirect,
			Target:   LoginPath,
			ReturnTo: path,
			Reason:   "authentication required",
		}
	}

	user, ok := g.sess.CurrentUser()
	if !ok {
		return Decision{
			Action:   ActionLoginRedirect,
			Target:   LoginPath,
			ReturnTo: path,
			Reason:   "authentication required",
		}
	}

	if roles := rule.RequiredRoles(); len(roles) > 0 && !user.HasAnyRole(roles...) {
		target := DefaultLanding(user.Role)
		g.logger.Info("navigation denied for role",
			"path", path, "role", user.Role, "redirect", target)
		return Decision{
			Action: ActionRoleRedirect,
			Target: target,
			Reason: "insufficient role",
		}
	}

	if rule.Condition != "" {
		if !g.conditionHolds(ctx, rule, path, user) {
			return Decision{
				Action: ActionRoleRedirect,
				Target: DefaultLanding(user.Role),
				Reason: "condition not satisfied",
			}
		}
	}

	return Decision{Action: ActionAllow}
}

// conditionHolds evaluates the rule's CEL condition. Evaluation failures
// deny: a route protected by a condition must never open because the
// condition broke.
func (g *Guard) conditionHolds(ctx context.Context, rule *Rule, path string, user auth.User) bool {
	if g.eval == nil {
		g.logger.Warn("route condition present but no evaluator configured",
			"path", rule.Prefix)
		return false
	}

	ok, err := g.eval.Evaluate(ctx, rule.Condition, map[string]any{
		"path":        path,
		"role":        string(user.Role),
		"email":       user.Email,
		"employee_id": user.EmployeeID,
	})
	if err != nil {
		g.logger.Warn("route condition evaluation failed",
			"path", path, "error", err)
		return false
	}
	return ok
}
