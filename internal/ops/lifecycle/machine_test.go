package lifecycle

import (
	"errors"
	"testing"

	"github.com/akzente/fieldops/internal/ops/entity"
)

func TestEveryStatusHasExactlyOneGroup(t *testing.T) {
	groups := []string{entity.GroupNew, entity.GroupOngoing, entity.GroupCompleted}
	seen := map[string]int{}
	for _, g := range groups {
		for _, s := range entity.StatusesInGroup(g) {
			seen[s]++
		}
	}
	for _, s := range entity.AllStatuses() {
		if seen[s] != 1 {
			t.Errorf("status %q appears in %d groups, want 1", s, seen[s])
		}
	}
	if len(seen) != len(entity.AllStatuses()) {
		t.Errorf("grouping covers %d statuses, want %d", len(seen), len(entity.AllStatuses()))
	}
}

func TestHappyPathToValid(t *testing.T) {
	steps := []struct {
		role, action, want string
	}{
		{entity.RoleAkzente, entity.ActionAssign, entity.StatusAssigned},
		{entity.RoleMerchandiser, entity.ActionSubmit, entity.StatusInProgress},
		{entity.RoleMerchandiser, entity.ActionFinish, entity.StatusFinished},
		{entity.RoleClient, entity.ActionOpen, entity.StatusOpenedByClient},
		{entity.RoleClient, entity.ActionAccept, entity.StatusAcceptedByClient},
		{entity.RoleAkzente, entity.ActionApprove, entity.StatusValid},
	}

	status := entity.StatusNew
	for _, step := range steps {
		next, err := Transition(status, step.role, step.action)
		if err != nil {
			t.Fatalf("%s --%s--> : unexpected error %v", status, step.action, err)
		}
		if next != step.want {
			t.Fatalf("%s --%s--> %s, want %s", status, step.action, next, step.want)
		}
		status = next
	}
}

func TestValidIsTerminal(t *testing.T) {
	actions := []string{
		entity.ActionAssign, entity.ActionSubmit, entity.ActionFinish,
		entity.ActionOpen, entity.ActionAccept, entity.ActionApprove,
		entity.ActionSchedulerDue,
	}
	roles := []string{
		entity.RoleMerchandiser, entity.RoleClient,
		entity.RoleAkzente, entity.RoleScheduler,
	}
	for _, a := range actions {
		for _, r := range roles {
			if _, err := Transition(entity.StatusValid, r, a); !errors.Is(err, ErrAlreadyClosed) {
				t.Errorf("valid --%s--> (%s): got %v, want ErrAlreadyClosed", a, r, err)
			}
		}
	}
	if !IsTerminal(entity.StatusValid) {
		t.Error("valid should be terminal")
	}
}

func TestApproveOnlyFromReviewStatus(t *testing.T) {
	for _, s := range entity.AllStatuses() {
		next, err := Transition(s, entity.RoleAkzente, entity.ActionApprove)
		switch s {
		case entity.StatusAcceptedByClient:
			if err != nil || next != entity.StatusValid {
				t.Errorf("approve from %s: got (%q, %v), want (valid, nil)", s, next, err)
			}
		case entity.StatusValid:
			if !errors.Is(err, ErrAlreadyClosed) {
				t.Errorf("approve from valid: got %v, want ErrAlreadyClosed", err)
			}
		default:
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("approve from %s: got %v, want ErrInvalidTransition", s, err)
			}
		}
	}
}

func TestDueReachableOnlyByScheduler(t *testing.T) {
	for _, role := range []string{entity.RoleMerchandiser, entity.RoleClient, entity.RoleAkzente} {
		if _, err := Transition(entity.StatusInProgress, role, entity.ActionSchedulerDue); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("scheduler-due as %s: got %v, want ErrUnauthorized", role, err)
		}
	}

	for _, s := range entity.AllStatuses() {
		next, err := Transition(s, entity.RoleScheduler, entity.ActionSchedulerDue)
		switch s {
		case entity.StatusValid:
			if !errors.Is(err, ErrAlreadyClosed) {
				t.Errorf("scheduler-due from valid: got %v, want ErrAlreadyClosed", err)
			}
		case entity.StatusDue:
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("scheduler-due from due: got %v, want ErrInvalidTransition", err)
			}
		default:
			if err != nil || next != entity.StatusDue {
				t.Errorf("scheduler-due from %s: got (%q, %v), want (due, nil)", s, next, err)
			}
		}
	}
}

func TestRoleGating(t *testing.T) {
	cases := []struct {
		from, role, action string
	}{
		{entity.StatusFinished, entity.RoleMerchandiser, entity.ActionOpen},
		{entity.StatusOpenedByClient, entity.RoleAkzente, entity.ActionAccept},
		{entity.StatusAcceptedByClient, entity.RoleClient, entity.ActionApprove},
		{entity.StatusNew, entity.RoleClient, entity.ActionAssign},
	}
	for _, c := range cases {
		if _, err := Transition(c.from, c.role, c.action); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("%s --%s--> as %s: got %v, want ErrUnauthorized", c.from, c.action, c.role, err)
		}
	}
}

func TestUnknownStatus(t *testing.T) {
	if _, err := Transition("bogus", entity.RoleAkzente, entity.ActionApprove); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("got %v, want ErrUnknownStatus", err)
	}
}

func TestAllowedActionsReflectTable(t *testing.T) {
	got := AllowedActions(entity.StatusAcceptedByClient, entity.RoleAkzente)
	if len(got) != 1 || got[0] != entity.ActionApprove {
		t.Errorf("akzente actions from review status: got %v, want [approve]", got)
	}

	if got := AllowedActions(entity.StatusValid, entity.RoleAkzente); len(got) != 0 {
		t.Errorf("actions from valid: got %v, want none", got)
	}

	got = AllowedActions(entity.StatusDue, entity.RoleMerchandiser)
	if len(got) != 1 || got[0] != entity.ActionFinish {
		t.Errorf("merchandiser actions from due: got %v, want [finish]", got)
	}

	// Every listed action must actually transition without error.
	for _, s := range entity.AllStatuses() {
		for _, r := range []string{entity.RoleMerchandiser, entity.RoleClient, entity.RoleAkzente, entity.RoleScheduler} {
			for _, a := range AllowedActions(s, r) {
				if _, err := Transition(s, r, a); err != nil {
					t.Errorf("AllowedActions listed %s --%s--> for %s but Transition failed: %v", s, a, r, err)
				}
			}
		}
	}
}
