package services

import "github.com/taskhub/taskhub-backend/internal/models"

type statusPair struct {
	from, to models.TaskStatus
}

// TransitionPolicy decides which task status changes are legal. The default
// policy allows every pair; a restricted policy is built from an explicit
// table of allowed transitions so tightening the rules is a data change.
type TransitionPolicy struct {
	allowed map[statusPair]struct{}
}

// PermissiveTransitions allows any status to move to any other status.
func PermissiveTransitions() TransitionPolicy { return TransitionPolicy{} }

// NewTransitionPolicy allows only the given (from, to) pairs. Staying in the
// same status is always legal.
func NewTransitionPolicy(pairs ...[2]models.TaskStatus) TransitionPolicy {
	allowed := make(map[statusPair]struct{}, len(pairs))
	for _, p := range pairs {
		allowed[statusPair{p[0], p[1]}] = struct{}{}
	}
	return TransitionPolicy{allowed: allowed}
}

func (p TransitionPolicy) Allowed(from, to models.TaskStatus) bool {
	if from == to {
		return true
	}
	if p.allowed == nil {
		return true
	}
	_, ok := p.allowed[statusPair{from, to}]
	return ok
}
