package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"school-management-api/models"
)

var (
	// ErrNotPermitted is returned before any store call when the actor's
	// role does not allow the operation.
	ErrNotPermitted = errors.New("operation not permitted for this user")

	// ErrEvaluationNotLocked is returned when a teacher submits an unlock
	// request for an evaluation that is still editable.
	ErrEvaluationNotLocked = errors.New("evaluation is not locked for its owner")

	// ErrRequestResolved is returned when rejecting a request that is no
	// longer pending.
	ErrRequestResolved = errors.New("unlock request already resolved")
)

// NotifyError signals that the state change was persisted but the follow-up
// notification send failed. No retry happens; the caller surfaces the
// distinct outcome and the admin may re-notify manually.
type NotifyError struct {
	Err error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("update succeeded but notification failed: %v", e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

// EvaluationStore is the slice of the evaluation collaborator this workflow
// consumes. Updates are full-record, last-write-wins; concurrent grants are
// not detected (the losing admin re-fetches to reconcile).
type EvaluationStore interface {
	GetEvaluation(id int) (*models.Evaluation, error)
	UpdateEvaluation(ev *models.Evaluation) error
}

// UnlockRequestStore persists the unlock-request lifecycle. FindPendingRequest
// returns (nil, nil) when no pending request exists.
type UnlockRequestStore interface {
	GetRequest(id uint) (*models.UnlockRequest, error)
	FindPendingRequest(evaluationID, requesterID int) (*models.UnlockRequest, error)
	ListPendingByEvaluation(evaluationID int) ([]models.UnlockRequest, error)
	CreateRequest(r *models.UnlockRequest) error
	UpdateRequest(r *models.UnlockRequest) error
}

// Notifier delivers workflow messages over the generic notification channel.
// Sends are fire-and-forget: a returned nil means the call succeeded, nothing
// more.
type Notifier interface {
	NotifyUser(userID, schoolID int, title, message, typ string, relatedEvaluationID int) error
	NotifyRole(roleID, schoolID int, title, message, typ string, relatedEvaluationID int) error
	MarkUnlockRequestRead(evaluationID, schoolID int) error
}

// UnlockWorkflow ties lock policy, override codec and unlock protocol
// together against the evaluation and notification collaborators.
type UnlockWorkflow struct {
	Evaluations EvaluationStore
	Requests    UnlockRequestStore
	Notifier    Notifier

	// Now is substituted in tests; defaults to time.Now.
	Now func() time.Time
}

func (w *UnlockWorkflow) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// SubmitUnlockRequest records a teacher's request to re-open a locked
// evaluation and fans a tagged notification out to every administrator of the
// school. Only the owner may submit, and only while the evaluation is locked
// for them. At most one pending request exists per evaluation and requester:
// resubmitting returns the pending one without a second fan-out.
func (w *UnlockWorkflow) SubmitUnlockRequest(requester models.User, course models.Course, evaluationID int, comment string) (*models.UnlockRequest, error) {
	ev, err := w.Evaluations.GetEvaluation(evaluationID)
	if err != nil {
		return nil, err
	}
	if ev.OwnerUserID != requester.UserID || ev.Course.SchoolID != requester.SchoolID {
		return nil, ErrNotPermitted
	}

	actor := Actor{UserID: requester.UserID, RoleID: requester.RoleID, SchoolID: requester.SchoolID}
	if access := AccessFor(*ev, w.now(), actor); !access.LockedForOwner || access.Editable {
		return nil, ErrEvaluationNotLocked
	}

	if pending, err := w.Requests.FindPendingRequest(evaluationID, requester.UserID); err != nil {
		return nil, err
	} else if pending != nil {
		return pending, nil
	}

	req := &models.UnlockRequest{
		RequestID:    uuid.NewString(),
		EvaluationID: ev.EvaluationID,
		RequesterID:  requester.UserID,
		Status:       models.UnlockStatusPending,
		CreateAt:     w.now(),
	}
	if comment != "" {
		req.Comment = &comment
	}
	if err := w.Requests.CreateRequest(req); err != nil {
		return nil, err
	}

	title, body := BuildUnlockRequestMessage(*ev, requester, course, comment)
	if err := w.Notifier.NotifyRole(models.RoleAdministrator, requester.SchoolID, title, body, "warning", ev.EvaluationID); err != nil {
		return req, &NotifyError{Err: err}
	}
	return req, nil
}

// GrantOverride stamps the typed override onto the evaluation, resolves any
// pending requests for it and notifies the owner with a deep link back to the
// edit page. Granting over an existing override just re-stamps admin and
// timestamp. Any legacy token still embedded in the description is stripped,
// superseded by the typed grant.
func (w *UnlockWorkflow) GrantOverride(admin Actor, evaluationID int) (*models.Evaluation, error) {
	if !admin.IsAdministrator() {
		return nil, ErrNotPermitted
	}

	ev, err := w.Evaluations.GetEvaluation(evaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Course.SchoolID != admin.SchoolID {
		return nil, ErrNotPermitted
	}

	now := w.now()
	adminID := admin.UserID
	ev.Description = RevokeOverrideDescription(ev.Description)
	ev.OverrideAdminID = &adminID
	ev.OverrideGrantedAt = &now

	if err := w.Evaluations.UpdateEvaluation(ev); err != nil {
		return nil, err
	}

	if err := w.resolvePendingRequests(ev.EvaluationID, admin, models.UnlockStatusGranted, ""); err != nil {
		return ev, err
	}

	title, body := BuildUnlockGrantedMessage(*ev)
	if err := w.Notifier.NotifyUser(ev.OwnerUserID, admin.SchoolID, title, body, "success", ev.EvaluationID); err != nil {
		return ev, &NotifyError{Err: err}
	}
	return ev, nil
}

// RevokeOverride clears the override, returning the evaluation to its
// time-derived state. Revoking when nothing is granted is a no-op that still
// re-persists the unchanged record.
func (w *UnlockWorkflow) RevokeOverride(admin Actor, evaluationID int) (*models.Evaluation, error) {
	if !admin.IsAdministrator() {
		return nil, ErrNotPermitted
	}

	ev, err := w.Evaluations.GetEvaluation(evaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Course.SchoolID != admin.SchoolID {
		return nil, ErrNotPermitted
	}

	ev.Description = RevokeOverrideDescription(ev.Description)
	ev.OverrideAdminID = nil
	ev.OverrideGrantedAt = nil

	if err := w.Evaluations.UpdateEvaluation(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// RejectUnlockRequest resolves a pending request without touching the
// evaluation, notifies the requester and marks the originating request
// notifications read.
func (w *UnlockWorkflow) RejectUnlockRequest(admin Actor, requestID uint, reason string) (*models.UnlockRequest, error) {
	if !admin.IsAdministrator() {
		return nil, ErrNotPermitted
	}

	req, err := w.Requests.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.UnlockStatusPending {
		return nil, ErrRequestResolved
	}

	ev, err := w.Evaluations.GetEvaluation(req.EvaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Course.SchoolID != admin.SchoolID {
		return nil, ErrNotPermitted
	}

	now := w.now()
	adminID := admin.UserID
	req.Status = models.UnlockStatusRejected
	req.ResolvedBy = &adminID
	req.ResolveAt = &now
	if reason != "" {
		req.Reason = &reason
	}
	if err := w.Requests.UpdateRequest(req); err != nil {
		return nil, err
	}

	title, body := BuildUnlockRejectionMessage(*ev, reason)
	if err := w.Notifier.NotifyUser(req.RequesterID, admin.SchoolID, title, body, "warning", ev.EvaluationID); err != nil {
		return req, &NotifyError{Err: err}
	}
	if err := w.Notifier.MarkUnlockRequestRead(ev.EvaluationID, admin.SchoolID); err != nil {
		return req, &NotifyError{Err: err}
	}
	return req, nil
}

// MigrateLegacyOverride moves a token still embedded in the description onto
// the typed columns and re-persists the cleaned row. Returns whether a
// migration happened. Rows with a typed grant are left alone.
func (w *UnlockWorkflow) MigrateLegacyOverride(ev *models.Evaluation) (bool, error) {
	if ev.HasOverride() {
		return false, nil
	}
	parts := DecomposeDescription(ev.Description)
	if parts.OverrideToken == "" {
		return false, nil
	}
	adminID, grantedAt, ok := ParseOverrideToken(parts.OverrideToken)
	if !ok {
		return false, nil
	}

	ev.Description = ComposeDescription(parts.Body, parts.PercentSuffix, "")
	ev.OverrideAdminID = &adminID
	ev.OverrideGrantedAt = &grantedAt
	if err := w.Evaluations.UpdateEvaluation(ev); err != nil {
		return false, err
	}
	return true, nil
}

func (w *UnlockWorkflow) resolvePendingRequests(evaluationID int, admin Actor, status, reason string) error {
	pending, err := w.Requests.ListPendingByEvaluation(evaluationID)
	if err != nil {
		return err
	}
	now := w.now()
	adminID := admin.UserID
	for i := range pending {
		req := &pending[i]
		req.Status = status
		req.ResolvedBy = &adminID
		req.ResolveAt = &now
		if reason != "" {
			req.Reason = &reason
		}
		if err := w.Requests.UpdateRequest(req); err != nil {
			return err
		}
	}
	return nil
}
