package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-management-api/config"
	"school-management-api/models"
	"school-management-api/services"
	"school-management-api/utils"
)

// ===== UNLOCK REQUEST CONTROLLERS =====

type unlockRequestBody struct {
	Comment string `json:"comment"`
}

type unlockRejectBody struct {
	Reason string `json:"reason"`
}

// writeWorkflowError maps workflow errors onto HTTP responses. A NotifyError
// means the state change was persisted but the notification send failed; that
// outcome is reported as success with a warning so the admin knows no message
// went out.
func writeWorkflowError(c *gin.Context, err error, okPayload gin.H) bool {
	if okPayload == nil {
		okPayload = gin.H{}
	}
	if err == nil {
		c.JSON(http.StatusOK, okPayload)
		return true
	}

	var notifyErr *services.NotifyError
	switch {
	case errors.As(err, &notifyErr):
		okPayload["warning"] = "Saved, but the notification could not be delivered"
		c.JSON(http.StatusOK, okPayload)
	case errors.Is(err, services.ErrNotPermitted):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted"})
	case errors.Is(err, services.ErrEvaluationNotLocked):
		c.JSON(http.StatusConflict, gin.H{"error": "Evaluation is not locked; no unlock request is needed"})
	case errors.Is(err, services.ErrRequestResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "Unlock request was already resolved"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
	return err == nil
}

// SubmitUnlockRequest handles POST /evaluations/:id/unlock-requests. The
// owning teacher asks the school's administrators to re-open a locked
// evaluation; every administrator receives a tagged notification.
func SubmitUnlockRequest(c *gin.Context) {
	evaluationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || evaluationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evaluation ID"})
		return
	}

	var body unlockRequestBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	var requester models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", c.GetInt("userID")).First(&requester).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	ev, ok := loadEvaluation(c, evaluationID)
	if !ok {
		return
	}

	var course models.Course
	if err := config.DB.Where("course_id = ?", ev.CourseID).First(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load course"})
		return
	}

	wf := evaluationWorkflow()
	req, err := wf.SubmitUnlockRequest(requester, course, evaluationID, utils.SanitizeInput(body.Comment))
	if req == nil && err != nil {
		writeWorkflowError(c, err, nil)
		return
	}
	writeWorkflowError(c, err, gin.H{"request": req})
}

// GrantOverride handles POST /evaluations/:id/override (admin only). The
// evaluation is re-opened regardless of the grace window and the owner is
// notified with a deep link to the edit page.
func GrantOverride(c *gin.Context) {
	evaluationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || evaluationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evaluation ID"})
		return
	}

	wf := evaluationWorkflow()
	ev, err := wf.GrantOverride(currentActor(c), evaluationID)
	if ev == nil && err != nil {
		writeWorkflowError(c, err, nil)
		return
	}
	writeWorkflowError(c, err, gin.H{"evaluation": ev})
}

// RevokeOverride handles DELETE /evaluations/:id/override (admin only),
// returning the evaluation to its time-derived lock state.
func RevokeOverride(c *gin.Context) {
	evaluationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || evaluationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evaluation ID"})
		return
	}

	wf := evaluationWorkflow()
	ev, err := wf.RevokeOverride(currentActor(c), evaluationID)
	if ev == nil && err != nil {
		writeWorkflowError(c, err, nil)
		return
	}
	writeWorkflowError(c, err, gin.H{"evaluation": ev})
}

// RejectUnlockRequest handles POST /unlock-requests/:id/reject (admin only).
// The evaluation is untouched; the requester is notified and the originating
// request notifications are marked read.
func RejectUnlockRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil || requestID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var body unlockRejectBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	wf := evaluationWorkflow()
	req, err := wf.RejectUnlockRequest(currentActor(c), uint(requestID), utils.SanitizeInput(body.Reason))
	if req == nil && err != nil {
		writeWorkflowError(c, err, nil)
		return
	}
	writeWorkflowError(c, err, gin.H{"request": req})
}

// GetUnlockRequests handles GET /unlock-requests (admin only): the pending
// approval queue.
func GetUnlockRequests(c *gin.Context) {
	status := c.DefaultQuery("status", models.UnlockStatusPending)

	// Only the queue of the admin's own school is visible.
	query := config.DB.Model(&models.UnlockRequest{}).
		Preload("Evaluation").
		Preload("Requester").
		Joins("JOIN evaluations ON evaluations.evaluation_id = unlock_requests.evaluation_id").
		Joins("JOIN courses ON courses.course_id = evaluations.course_id").
		Where("courses.school_id = ?", c.GetInt("schoolID"))
	if status != "all" {
		query = query.Where("unlock_requests.status = ?", status)
	}

	var requests []models.UnlockRequest
	if err := query.Order("unlock_requests.create_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch unlock requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
