package session

import "asistenciaBot/api"

// Decision is the outcome of gating a screen by role.
type Decision int

const (
	// DecisionLoading means Restore has not finished yet; the screen waits.
	DecisionLoading Decision = iota
	DecisionAuthorized
	// DecisionUnauthenticated sends the chat to the login prompt.
	DecisionUnauthenticated
	// DecisionForbidden means logged in but the role is not allowed.
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionAuthorized:
		return "authorized"
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Guard decides render-vs-redirect for a required role set. Decisions are
// recomputed from current store state on every call and never cached, so a
// logout flips the very next evaluation.
type Guard struct {
	store *Store
}

func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// Evaluate gates the chat against the allowed roles. An empty role set
// means any authenticated session passes.
func (g *Guard) Evaluate(chatID int64, allowed ...api.Role) Decision {
	if !g.store.Ready() {
		return DecisionLoading
	}

	sess, ok := g.store.Current(chatID)
	if !ok {
		return DecisionUnauthenticated
	}

	if len(allowed) == 0 {
		return DecisionAuthorized
	}
	for _, role := range allowed {
		if sess.TipoUsuario == role {
			return DecisionAuthorized
		}
	}
	return DecisionForbidden
}
