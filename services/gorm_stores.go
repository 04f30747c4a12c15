package services

import (
	"errors"
	"fmt"
	"html"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-management-api/config"
	"school-management-api/models"
)

// GORM-backed implementations of the workflow collaborators.

type GormEvaluationStore struct {
	DB *gorm.DB
}

// GetEvaluation loads a live evaluation with its course, which carries the
// school the evaluation belongs to.
func (s GormEvaluationStore) GetEvaluation(id int) (*models.Evaluation, error) {
	var ev models.Evaluation
	if err := s.DB.Preload("Course").
		Where("evaluation_id = ? AND delete_at IS NULL", id).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// UpdateEvaluation writes the full record. Last write wins: two admins
// racing on the same evaluation is accepted, the loser re-fetches.
func (s GormEvaluationStore) UpdateEvaluation(ev *models.Evaluation) error {
	now := time.Now()
	ev.UpdateAt = &now
	return s.DB.Omit(clause.Associations).Save(ev).Error
}

type GormUnlockRequestStore struct {
	DB *gorm.DB
}

func (s GormUnlockRequestStore) GetRequest(id uint) (*models.UnlockRequest, error) {
	var req models.UnlockRequest
	if err := s.DB.Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (s GormUnlockRequestStore) FindPendingRequest(evaluationID, requesterID int) (*models.UnlockRequest, error) {
	var req models.UnlockRequest
	err := s.DB.Where("evaluation_id = ? AND requester_id = ? AND status = ?",
		evaluationID, requesterID, models.UnlockStatusPending).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s GormUnlockRequestStore) ListPendingByEvaluation(evaluationID int) ([]models.UnlockRequest, error) {
	var reqs []models.UnlockRequest
	err := s.DB.Where("evaluation_id = ? AND status = ?", evaluationID, models.UnlockStatusPending).Find(&reqs).Error
	return reqs, err
}

func (s GormUnlockRequestStore) CreateRequest(r *models.UnlockRequest) error {
	return s.DB.Create(r).Error
}

func (s GormUnlockRequestStore) UpdateRequest(r *models.UnlockRequest) error {
	return s.DB.Save(r).Error
}

type GormNotifier struct {
	DB *gorm.DB
}

func (n GormNotifier) NotifyUser(userID, schoolID int, title, message, typ string, relatedEvaluationID int) error {
	evalID := uint(relatedEvaluationID)
	notif := models.Notification{
		UserID:              uint(userID),
		Title:               title,
		Message:             message,
		Type:                typ,
		RelatedEvaluationID: &evalID,
		SchoolID:            schoolID,
		IsRead:              false,
		CreateAt:            time.Now(),
	}
	return n.DB.Create(&notif).Error
}

// NotifyRole fans one notification row out to every active holder of the
// role within the school, plus a best-effort email copy.
func (n GormNotifier) NotifyRole(roleID, schoolID int, title, message, typ string, relatedEvaluationID int) error {
	var recipients []models.User
	if err := n.DB.Where("role_id = ? AND school_id = ? AND delete_at IS NULL", roleID, schoolID).
		Find(&recipients).Error; err != nil {
		return err
	}

	evalID := uint(relatedEvaluationID)
	emails := make([]string, 0, len(recipients))
	for _, u := range recipients {
		notif := models.Notification{
			UserID:              uint(u.UserID),
			Title:               title,
			Message:             message,
			Type:                typ,
			RelatedEvaluationID: &evalID,
			SchoolID:            schoolID,
			IsRead:              false,
			CreateAt:            time.Now(),
		}
		if err := n.DB.Create(&notif).Error; err != nil {
			return err
		}
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}

	go func() {
		if err := config.SendMail(emails, title, mailBody(message)); err != nil {
			log.Printf("NotifyRole: failed to send mail copy: %v", err)
		}
	}()
	return nil
}

// MarkUnlockRequestRead marks every unread unlock-request notification for
// the evaluation as read, across all administrators of the school.
func (n GormNotifier) MarkUnlockRequestRead(evaluationID, schoolID int) error {
	now := time.Now()
	return n.DB.Model(&models.Notification{}).
		Where("school_id = ? AND is_read = ? AND title LIKE ? AND title LIKE ?",
			schoolID, false, UnlockRequestPrefix+"%", fmt.Sprintf("%%[EVAL_ID:%d]%%", evaluationID)).
		Updates(map[string]interface{}{"is_read": true, "update_at": now}).Error
}

func mailBody(message string) string {
	return "<p>" + html.EscapeString(message) + "</p>"
}

// NewUnlockWorkflow wires the workflow against the shared database handle.
func NewUnlockWorkflow(db *gorm.DB) *UnlockWorkflow {
	return &UnlockWorkflow{
		Evaluations: GormEvaluationStore{DB: db},
		Requests:    GormUnlockRequestStore{DB: db},
		Notifier:    GormNotifier{DB: db},
	}
}
