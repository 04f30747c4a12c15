package services

import (
	"time"

	"school-management-api/models"
)

// Actor identifies who is performing an operation. Authorization is a pure
// function of these fields, never of ambient session state.
type Actor struct {
	UserID   int
	RoleID   int
	SchoolID int
}

func (a Actor) IsAdministrator() bool {
	return a.RoleID == models.RoleAdministrator
}

// EvaluationAccess is what the console needs to render an evaluation row:
// whether the actor may edit/delete it, and whether the owner is locked out
// (the lock badge shown to administrators, independent of who is asking).
type EvaluationAccess struct {
	Editable       bool `json:"editable"`
	LockedForOwner bool `json:"locked_for_owner"`
}

// AccessFor derives the edit-lock state of an evaluation at the given
// instant, in order: administrators always edit; an override opens the
// evaluation; future-dated evaluations are always open; otherwise the grace
// window of GraceBusinessDays after creation applies. The window anchors to
// CreateAt, never to the academic date.
func AccessFor(ev models.Evaluation, now time.Time, actor Actor) EvaluationAccess {
	locked := lockedForOwner(ev, now)
	return EvaluationAccess{
		Editable:       actor.IsAdministrator() || !locked,
		LockedForOwner: locked,
	}
}

func lockedForOwner(ev models.Evaluation, now time.Time) bool {
	if evaluationHasOverride(ev) {
		return false
	}
	if ev.EvalDate.After(now) {
		return false
	}
	return BusinessDaysElapsed(ev.CreateAt, now) > GraceBusinessDays
}

// evaluationHasOverride prefers the typed columns but still honors a legacy
// token embedded in the description until the row is migrated.
func evaluationHasOverride(ev models.Evaluation) bool {
	return ev.HasOverride() || HasLegacyOverrideToken(ev.Description)
}
