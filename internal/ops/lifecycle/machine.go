// Package lifecycle holds the report status state machine. The machine is
// pure: it decides transitions from data and never touches storage, so the
// same table backs user requests, the deadline scheduler and the
// allowed-actions output consumed by the front-ends.
package lifecycle

import (
	"errors"

	"github.com/akzente/fieldops/internal/ops/entity"
)

var (
	// ErrInvalidTransition is returned when no edge exists for the
	// (status, action) pair.
	ErrInvalidTransition = errors.New("invalid transition for current status")
	// ErrAlreadyClosed is returned for any action on a valid report.
	ErrAlreadyClosed = errors.New("report already closed")
	// ErrUnauthorized is returned when the edge exists but the acting role
	// is not allowed to take it.
	ErrUnauthorized = errors.New("role not allowed for this action")
	// ErrUnknownStatus is returned when the stored status is outside the
	// enumeration.
	ErrUnknownStatus = errors.New("unknown report status")
)

// edge is one directed transition. No implicit reverse edges.
type edge struct {
	from   string
	action string
	to     string
	role   string
}

// transitions is the authoritative edge list. The scheduler-due edges are
// not listed here; they apply uniformly to every non-terminal status except
// due itself and are resolved in lookup.
var transitions = []edge{
	{entity.StatusNew, entity.ActionAssign, entity.StatusAssigned, entity.RoleAkzente},
	{entity.StatusNew, entity.ActionSubmit, entity.StatusDraft, entity.RoleMerchandiser},
	{entity.StatusAssigned, entity.ActionSubmit, entity.StatusInProgress, entity.RoleMerchandiser},
	{entity.StatusDraft, entity.ActionFinish, entity.StatusFinished, entity.RoleMerchandiser},
	{entity.StatusInProgress, entity.ActionFinish, entity.StatusFinished, entity.RoleMerchandiser},
	{entity.StatusDue, entity.ActionFinish, entity.StatusFinished, entity.RoleMerchandiser},
	{entity.StatusFinished, entity.ActionOpen, entity.StatusOpenedByClient, entity.RoleClient},
	{entity.StatusOpenedByClient, entity.ActionAccept, entity.StatusAcceptedByClient, entity.RoleClient},
	// Approval to valid is permitted from the client-accepted review status
	// only. This guard lives here and nowhere else.
	{entity.StatusAcceptedByClient, entity.ActionApprove, entity.StatusValid, entity.RoleAkzente},
}

type edgeKey struct {
	from   string
	action string
}

var edgeIndex = buildIndex()

func buildIndex() map[edgeKey]edge {
	idx := make(map[edgeKey]edge, len(transitions))
	for _, e := range transitions {
		idx[edgeKey{e.from, e.action}] = e
	}
	return idx
}

// Transition resolves the next status for (status, role, action).
// It returns ErrAlreadyClosed from the terminal status, ErrInvalidTransition
// when no edge matches, and ErrUnauthorized when the edge exists but the
// role may not take it.
func Transition(status, role, action string) (string, error) {
	if !entity.IsValidStatus(status) {
		return "", ErrUnknownStatus
	}
	if status == entity.StatusValid {
		return "", ErrAlreadyClosed
	}

	if action == entity.ActionSchedulerDue {
		if role != entity.RoleScheduler {
			return "", ErrUnauthorized
		}
		if status == entity.StatusDue {
			return "", ErrInvalidTransition
		}
		return entity.StatusDue, nil
	}

	e, ok := edgeIndex[edgeKey{status, action}]
	if !ok {
		return "", ErrInvalidTransition
	}
	if e.role != role {
		return "", ErrUnauthorized
	}
	return e.to, nil
}

// AllowedActions lists the actions a role may take from a status. UI layers
// render exactly this; they never re-encode the table.
func AllowedActions(status, role string) []string {
	actions := []string{}
	if !entity.IsValidStatus(status) || status == entity.StatusValid {
		return actions
	}
	for _, e := range transitions {
		if e.from == status && e.role == role {
			actions = append(actions, e.action)
		}
	}
	if role == entity.RoleScheduler && status != entity.StatusDue {
		actions = append(actions, entity.ActionSchedulerDue)
	}
	return actions
}

// IsTerminal reports whether a status has no outgoing edges.
func IsTerminal(status string) bool {
	return entity.StatusGroup(status) == entity.GroupCompleted
}
