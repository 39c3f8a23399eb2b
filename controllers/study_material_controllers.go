package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/utils"
)

type StudyMaterialController struct {
	DB *gorm.DB
}

func NewStudyMaterialController(db *gorm.DB) *StudyMaterialController {
	return &StudyMaterialController{DB: db}
}

// GetApprovedMaterials -> student-facing listing, approved entries only.
func (sc *StudyMaterialController) GetApprovedMaterials(c *gin.Context) {
	query := sc.DB.Where("approved = ?", true)
	if course := c.Query("course"); course != "" {
		query = query.Where("course_code = ?", course)
	}

	var materials []models.StudyMaterial
	if err := query.Order("created_at desc").Find(&materials).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Study materials", materials)
}

// CreateMaterial -> upload metadata; awaits admin approval.
func (sc *StudyMaterialController) CreateMaterial(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		CourseCode  string `json:"course_code"`
		Description string `json:"description"`
		FileURL     string `json:"file_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	material := models.StudyMaterial{
		UploaderID:  actorID(c),
		Title:       req.Title,
		CourseCode:  req.CourseCode,
		Description: req.Description,
		FileURL:     req.FileURL,
	}
	if err := sc.DB.Create(&material).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Study material submitted for review", material)
}

// ApproveMaterial -> admin approval toggle.
func (sc *StudyMaterialController) ApproveMaterial(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("material_id"))

	var material models.StudyMaterial
	if err := sc.DB.First(&material, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	material.Approved = true
	if err := sc.DB.Save(&material).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Study material approved", material)
}

// DeleteMaterial -> uploader removes own entry; admins remove any.
func (sc *StudyMaterialController) DeleteMaterial(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("material_id"))

	query := sc.DB.Where("id = ?", id)
	if role, _ := c.Get("role"); role != models.RoleAdmin {
		query = query.Where("uploader_id = ?", actorID(c))
	}

	result := query.Delete(&models.StudyMaterial{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Study material deleted", gin.H{"material_id": id})
}
