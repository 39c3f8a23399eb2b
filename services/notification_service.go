package services

import (
	"gorm.io/gorm"

	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/utils"
)

// NotificationService writes notification rows for order events. Dispatch
// is fire-and-forget: failures are logged and never propagated, so they can
// never fail the state transition that triggered them.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotifyOrderEvent fans out one notification per admin plus one for the
// owning student.
func (ns *NotificationService) NotifyOrderEvent(order *models.FoodOrder, title, message string) {
	var admins []models.User
	if err := ns.db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		utils.ErrorLogger.Printf("Notification fan-out: failed to load admins for order %d: %v", order.ID, err)
	}

	recipients := make([]*uint, 0, len(admins)+1)
	for i := range admins {
		recipients = append(recipients, &admins[i].ID)
	}
	studentID := order.StudentID
	recipients = append(recipients, &studentID)

	for _, userID := range recipients {
		notif := models.Notification{
			UserID:  userID,
			Title:   title,
			Message: message,
		}
		if err := ns.db.Create(&notif).Error; err != nil {
			utils.ErrorLogger.Printf("Notification dispatch failed for user %d (order %d): %v", *userID, order.ID, err)
		}
	}
}
