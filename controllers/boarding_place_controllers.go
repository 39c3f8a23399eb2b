package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/utils"
)

type BoardingPlaceController struct {
	DB *gorm.DB
}

func NewBoardingPlaceController(db *gorm.DB) *BoardingPlaceController {
	return &BoardingPlaceController{DB: db}
}

// GetApprovedPlaces -> public listing of approved boarding places.
func (bc *BoardingPlaceController) GetApprovedPlaces(c *gin.Context) {
	var places []models.BoardingPlace
	if err := bc.DB.Where("approved = ?", true).
		Order("created_at desc").Find(&places).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Boarding places", places)
}

// CreatePlace -> submit a listing; awaits admin approval.
func (bc *BoardingPlaceController) CreatePlace(c *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required"`
		Address     string   `json:"address" binding:"required"`
		MonthlyRent *float64 `json:"monthly_rent"`
		Description string   `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	place := models.BoardingPlace{
		OwnerID:     actorID(c),
		Title:       req.Title,
		Address:     req.Address,
		Description: req.Description,
	}
	if req.MonthlyRent != nil {
		place.MonthlyRent = *req.MonthlyRent
	}

	if err := bc.DB.Create(&place).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Boarding place submitted for review", place)
}

// ApprovePlace -> admin approval toggle.
func (bc *BoardingPlaceController) ApprovePlace(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("place_id"))

	var place models.BoardingPlace
	if err := bc.DB.First(&place, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	place.Approved = true
	if err := bc.DB.Save(&place).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Boarding place approved", place)
}

// DeletePlace -> owner removes own listing; admins remove any.
func (bc *BoardingPlaceController) DeletePlace(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("place_id"))

	query := bc.DB.Where("id = ?", id)
	if role, _ := c.Get("role"); role != models.RoleAdmin {
		query = query.Where("owner_id = ?", actorID(c))
	}

	result := query.Delete(&models.BoardingPlace{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Boarding place deleted", gin.H{"place_id": id})
}
