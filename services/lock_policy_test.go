package services

import (
	"testing"
	"time"

	"school-management-api/models"
)

// Fixed clock: Wednesday 2024-04-17 noon.
var policyNow = time.Date(2024, time.April, 17, 12, 0, 0, 0, time.UTC)

func evalCreated(createAt, evalDate time.Time) models.Evaluation {
	return models.Evaluation{
		EvaluationID: 42,
		Title:        "Quiz 1",
		OwnerUserID:  7,
		CreateAt:     createAt,
		EvalDate:     evalDate,
	}
}

func withTypedOverride(ev models.Evaluation) models.Evaluation {
	adminID := 3
	grantedAt := policyNow.Add(-time.Hour)
	ev.OverrideAdminID = &adminID
	ev.OverrideGrantedAt = &grantedAt
	return ev
}

func TestAccessFor(t *testing.T) {
	teacher := Actor{UserID: 7, RoleID: models.RoleTeacher, SchoolID: 1}
	admin := Actor{UserID: 3, RoleID: models.RoleAdministrator, SchoolID: 1}
	staff := Actor{UserID: 9, RoleID: models.RoleStaff, SchoolID: 1}

	tenBusinessDaysAgo := time.Date(2024, time.April, 3, 9, 0, 0, 0, time.UTC)
	yesterday := policyNow.AddDate(0, 0, -1)
	tomorrow := policyNow.AddDate(0, 0, 1)

	tests := []struct {
		name       string
		ev         models.Evaluation
		actor      Actor
		wantEdit   bool
		wantLocked bool
	}{
		{
			"created today dated today is editable",
			evalCreated(policyNow.Add(-time.Hour), policyNow.Add(-time.Hour)),
			teacher, true, false,
		},
		{
			"within grace window",
			evalCreated(policyNow.AddDate(0, 0, -3), yesterday),
			teacher, true, false,
		},
		{
			"past grace window locks the owner",
			evalCreated(tenBusinessDaysAgo, yesterday),
			teacher, false, true,
		},
		{
			"admin bypasses but still sees the badge",
			evalCreated(tenBusinessDaysAgo, yesterday),
			admin, true, true,
		},
		{
			"staff is locked out like the owner",
			evalCreated(tenBusinessDaysAgo, yesterday),
			staff, false, true,
		},
		{
			"future evaluation open for everyone",
			evalCreated(tenBusinessDaysAgo, tomorrow),
			teacher, true, false,
		},
		{
			"typed override re-opens a locked evaluation",
			withTypedOverride(evalCreated(tenBusinessDaysAgo, yesterday)),
			teacher, true, false,
		},
		{
			"legacy description token re-opens a locked evaluation",
			func() models.Evaluation {
				ev := evalCreated(tenBusinessDaysAgo, yesterday)
				ev.Description = "Examen parcial@25 @@OVERRIDE:3:1714066800000"
				return ev
			}(),
			teacher, true, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccessFor(tt.ev, policyNow, tt.actor)
			if got.Editable != tt.wantEdit || got.LockedForOwner != tt.wantLocked {
				t.Errorf("AccessFor = %+v, want editable=%v lockedForOwner=%v", got, tt.wantEdit, tt.wantLocked)
			}
		})
	}
}

// Moving the academic date into the past never re-anchors the grace window:
// it stays tied to CreateAt.
func TestAccessForAnchorsToCreation(t *testing.T) {
	teacher := Actor{UserID: 7, RoleID: models.RoleTeacher}

	ev := evalCreated(policyNow.Add(-2*time.Hour), policyNow.AddDate(0, -1, 0))
	if got := AccessFor(ev, policyNow, teacher); !got.Editable {
		t.Errorf("fresh evaluation with a back-dated eval_date should stay editable, got %+v", got)
	}
}

func TestGrantThenRevokeThroughPolicy(t *testing.T) {
	teacher := Actor{UserID: 7, RoleID: models.RoleTeacher}
	admin := Actor{UserID: 3, RoleID: models.RoleAdministrator}

	ev := evalCreated(time.Date(2024, time.April, 3, 9, 0, 0, 0, time.UTC), policyNow.AddDate(0, 0, -1))
	ev.Description = "Examen parcial@25"

	// Legacy-style grant through the codec is enough to open the evaluation.
	ev.Description = GrantOverrideDescription(ev.Description, admin.UserID, policyNow)
	if got := AccessFor(ev, policyNow, teacher); !got.Editable {
		t.Fatalf("granted evaluation should be editable for owner, got %+v", got)
	}

	ev.Description = RevokeOverrideDescription(ev.Description)
	got := AccessFor(ev, policyNow, teacher)
	if got.Editable || !got.LockedForOwner {
		t.Errorf("revoked evaluation should lock the owner again, got %+v", got)
	}
	if adminAccess := AccessFor(ev, policyNow, admin); !adminAccess.Editable {
		t.Errorf("admin should still edit after revoke, got %+v", adminAccess)
	}
}
