package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetMyNotifications -> the caller's notifications, newest first.
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	var notifs []models.Notification
	if err := nc.DB.Where("user_id = ?", actorID(c)).
		Order("created_at desc").Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", notifs)
}

// MarkRead -> mark one of the caller's notifications as read.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notif_id"))

	result := nc.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, actorID(c)).
		Update("read", true)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked read", gin.H{"notif_id": id})
}

// DeleteNotification -> remove one of the caller's notifications.
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notif_id"))

	result := nc.DB.Where("id = ? AND user_id = ?", id, actorID(c)).
		Delete(&models.Notification{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": id})
}
