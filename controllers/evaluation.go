package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-management-api/config"
	"school-management-api/models"
	"school-management-api/services"
	"school-management-api/utils"
)

// ===== EVALUATION CONTROLLERS =====

// EvaluationResponse decorates an evaluation with the lock state computed for
// the requesting user. The console renders the edit/delete buttons from
// Editable and the lock badge from LockedForOwner.
type EvaluationResponse struct {
	models.Evaluation
	services.EvaluationAccess
}

func currentActor(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:   c.GetInt("userID"),
		RoleID:   c.GetInt("roleID"),
		SchoolID: c.GetInt("schoolID"),
	}
}

func evaluationWorkflow() *services.UnlockWorkflow {
	return services.NewUnlockWorkflow(config.DB)
}

// loadEvaluation fetches a live evaluation and migrates a legacy description
// override onto the typed columns on first read.
func loadEvaluation(c *gin.Context, id int) (*models.Evaluation, bool) {
	wf := evaluationWorkflow()
	ev, err := wf.Evaluations.GetEvaluation(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Evaluation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load evaluation"})
		}
		return nil, false
	}
	// Evaluations from another school are indistinguishable from missing ones.
	if ev.Course.SchoolID != c.GetInt("schoolID") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Evaluation not found"})
		return nil, false
	}
	if _, err := wf.MigrateLegacyOverride(ev); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to migrate evaluation override"})
		return nil, false
	}
	return ev, true
}

// GetEvaluations lists evaluations visible to the current user, each with its
// computed lock state.
func GetEvaluations(c *gin.Context) {
	actor := currentActor(c)

	query := config.DB.Model(&models.Evaluation{}).
		Preload("Course").
		Joins("JOIN courses ON courses.course_id = evaluations.course_id").
		Where("evaluations.delete_at IS NULL").
		Where("courses.school_id = ?", actor.SchoolID)

	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("evaluations.course_id = ?", courseID)
	}
	// Teachers see their own evaluations; admins and staff see the school's.
	if actor.RoleID == models.RoleTeacher {
		query = query.Where("evaluations.owner_user_id = ?", actor.UserID)
	}

	var evaluations []models.Evaluation
	if err := query.Order("evaluations.eval_date DESC").Find(&evaluations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch evaluations"})
		return
	}

	now := time.Now()
	responses := make([]EvaluationResponse, 0, len(evaluations))
	for _, ev := range evaluations {
		responses = append(responses, EvaluationResponse{
			Evaluation:       ev,
			EvaluationAccess: services.AccessFor(ev, now, actor),
		})
	}

	c.JSON(http.StatusOK, gin.H{"evaluations": responses})
}

// GetEvaluation returns a single evaluation with its lock state.
func GetEvaluation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evaluation ID"})
		return
	}

	ev, ok := loadEvaluation(c, id)
	if !ok {
		return
	}

	actor := currentActor(c)
	c.JSON(http.StatusOK, EvaluationResponse{
		Evaluation:       *ev,
		EvaluationAccess: services.AccessFor(*ev, time.Now(), actor),
	})
}

type evaluationRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	CourseID      int      `json:"course_id" binding:"required"`
	EvalDate      string   `json:"eval_date" binding:"required"` // YYYY-MM-DD
	MaxScore      float64  `json:"max_score"`
	WeightPercent *float64 `json:"weight_percent"`
}

// CreateEvaluation creates an evaluation owned by the current teacher.
// CreateAt anchors the edit-grace window and is never touched afterwards.
func CreateEvaluation(c *gin.Context) {
	var req evaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	evalDate, err := time.ParseInLocation("2006-01-02", req.EvalDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid eval_date, expected YYYY-MM-DD"})
		return
	}

	actor := currentActor(c)

	var course models.Course
	if err := config.DB.Where("course_id = ? AND school_id = ? AND delete_at IS NULL", req.CourseID, actor.SchoolID).First(&course).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course not found"})
		return
	}

	ev := models.Evaluation{
		Title:         utils.SanitizeInput(req.Title),
		Description:   utils.SanitizeInput(req.Description),
		CourseID:      req.CourseID,
		OwnerUserID:   actor.UserID,
		EvalDate:      evalDate,
		MaxScore:      req.MaxScore,
		WeightPercent: req.WeightPercent,
		CreateAt:      time.Now(),
	}

	if err := config.DB.Create(&ev).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create evaluation"})
		return
	}

	c.JSON(http.StatusCreated, EvaluationResponse{
		Evaluation:       ev,
		EvaluationAccess: services.AccessFor(ev, time.Now(), actor),
	})
}

// UpdateEvaluation edits an evaluation, enforcing the lock policy. The
// description is recomposed so that an override token still embedded in a
// legacy row survives the edit instead of being corrupted or silently
// dropped.
func UpdateEvaluation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evaluation ID"})
		return
	}

	var req evaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, ok := loadEvaluation(c, id)
	if !ok {
		return
	}

	actor := currentActor(c)
	if !actor.IsAdministrator() && ev.OwnerUserID != actor.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may edit this evaluation"})
		return
	}

	access := services.AccessFor(*ev, time.Now(), actor)
	if !access.Editable {
		c.JSON(http.StatusForbidden, gin.H{
			"error":            "La evaluación está bloqueada. Solicite permiso de edición a un administrador.",
			"locked_for_owner": true,
		})
		return
	}

	evalDate, err := time.ParseInLocation("2006-01-02", req.EvalDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid eval_date, expected YYYY-MM-DD"})
		return
	}

	// Preserve the stored override token across the edit: the client only
	// ever authors the body and the grade-weight suffix.
	stored := services.DecomposeDescription(ev.Description)
	incoming := services.DecomposeDescription(utils.SanitizeInput(req.Description))
	ev.Description = services.ComposeDescription(incoming.Body, incoming.PercentSuffix, stored.OverrideToken)

	ev.Title = utils.SanitizeInput(req.Title)
	ev.CourseID = req.CourseID
	ev.EvalDate = evalDate
	ev.MaxScore = req.MaxScore
	ev.WeightPercent = req.WeightPercent

	wf := evaluationWorkflow()
	if err := wf.Evaluations.UpdateEvaluation(ev); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update evaluation"})
		return
	}

	c.JSON(http.StatusOK, EvaluationResponse{
		Evaluation:       *ev,
		EvaluationAccess: services.AccessFor(*ev, time.Now(), actor),
	})
}

// DeleteEvaluation soft-deletes an evaluation, under the same lock policy as
// editing.
func DeleteEvaluation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evaluation ID"})
		return
	}

	ev, ok := loadEvaluation(c, id)
	if !ok {
		return
	}

	actor := currentActor(c)
	if !actor.IsAdministrator() && ev.OwnerUserID != actor.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may delete this evaluation"})
		return
	}

	access := services.AccessFor(*ev, time.Now(), actor)
	if !access.Editable {
		c.JSON(http.StatusForbidden, gin.H{
			"error":            "La evaluación está bloqueada. Solicite permiso de edición a un administrador.",
			"locked_for_owner": true,
		})
		return
	}

	now := time.Now()
	ev.DeleteAt = &now
	if err := config.DB.Save(ev).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete evaluation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Evaluation deleted"})
}
