package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/utils"
)

type FoodItemController struct {
	DB *gorm.DB
}

var ErrInvalidItemID = errors.New("invalid item id")

func NewFoodItemController(db *gorm.DB) *FoodItemController {
	return &FoodItemController{DB: db}
}

// GetAllFoodItems -> public catalog listing (available items only).
func (fic *FoodItemController) GetAllFoodItems(c *gin.Context) {
	query := fic.DB.Where("available = ?", true)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var items []models.FoodItem
	if err := query.Order("created_at desc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Food items", items)
}

// GetVendorItems -> the caller's own catalog, including unavailable items.
func (fic *FoodItemController) GetVendorItems(c *gin.Context) {
	var items []models.FoodItem
	if err := fic.DB.Where("vendor_id = ?", actorID(c)).
		Order("created_at desc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Your items", items)
}

type foodItemReq struct {
	Name        string   `json:"name" binding:"required"`
	Price       *float64 `json:"price" binding:"required"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Available   *bool    `json:"available"`
}

// CreateFoodItem -> vendor adds a catalog entry.
func (fic *FoodItemController) CreateFoodItem(c *gin.Context) {
	var req foodItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.FoodItem{
		VendorID:    actorID(c),
		Name:        req.Name,
		Price:       *req.Price,
		Category:    req.Category,
		Description: req.Description,
		Available:   true,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := fic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Food item created", item)
}

// UpdateFoodItem -> vendor edits an own catalog entry (scoped update).
func (fic *FoodItemController) UpdateFoodItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidItemID)
		return
	}

	var item models.FoodItem
	if err := fic.DB.Where("id = ? AND vendor_id = ?", id, actorID(c)).First(&item).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req foodItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item.Name = req.Name
	item.Price = *req.Price
	item.Category = req.Category
	item.Description = req.Description
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := fic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Food item updated", item)
}

// DeleteFoodItem -> vendor removes an own catalog entry.
func (fic *FoodItemController) DeleteFoodItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidItemID)
		return
	}

	result := fic.DB.Where("id = ? AND vendor_id = ?", id, actorID(c)).Delete(&models.FoodItem{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Food item deleted", gin.H{"item_id": id})
}
