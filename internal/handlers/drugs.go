package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hivcare-app-server/internal/models"
	"hivcare-app-server/internal/utils"
)

// DrugHandler handles the pharmacy commodity catalog.
type DrugHandler struct {
	DB *gorm.DB
}

// NewDrugHandler creates a new DrugHandler.
func NewDrugHandler(db *gorm.DB) *DrugHandler {
	return &DrugHandler{DB: db}
}

// CreateDrugRequest represents the request body for adding a catalog entry.
type CreateDrugRequest struct {
	CommodityName string `json:"commodityName" binding:"required"`
	GenericName   string `json:"genericName"`
	Strength      string `json:"strength"`
	Unit          string `json:"unit"`
	Quantity      int    `json:"quantity" binding:"min=0"`
	ReorderLevel  int    `json:"reorderLevel" binding:"min=0"`
}

// CreateDrug adds a drug to the catalog.
func (h *DrugHandler) CreateDrug(c *gin.Context) {
	var req CreateDrugRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	drug := models.Drug{
		CommodityName: req.CommodityName,
		GenericName:   req.GenericName,
		Strength:      req.Strength,
		Unit:          req.Unit,
		Quantity:      req.Quantity,
		ReorderLevel:  req.ReorderLevel,
		IsActive:      true,
	}
	if err := h.DB.Create(&drug).Error; err != nil {
		utils.InternalServerError(c, "Failed to create drug: "+err.Error())
		return
	}
	utils.Created(c, "Drug created successfully", drug)
}

// GetDrugs lists catalog entries; ?active_only=true restricts to active stock.
func (h *DrugHandler) GetDrugs(c *gin.Context) {
	query := h.DB.Order("commodity_name asc")
	if c.Query("active_only") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var drugs []models.Drug
	if err := query.Find(&drugs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch drugs: "+err.Error())
		return
	}
	utils.Success(c, "Drugs fetched successfully", drugs)
}

// UpdateDrugStockRequest represents the request body for a stock adjustment.
type UpdateDrugStockRequest struct {
	Quantity *int  `json:"quantity" binding:"required"`
	IsActive *bool `json:"isActive"`
}

// UpdateDrugStock adjusts on-hand quantity or active status.
func (h *DrugHandler) UpdateDrugStock(c *gin.Context) {
	var req UpdateDrugStockRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var drug models.Drug
	if err := h.DB.First(&drug, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Drug not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if *req.Quantity < 0 {
		utils.BadRequest(c, "Quantity must not be negative")
		return
	}
	drug.Quantity = *req.Quantity
	if req.IsActive != nil {
		drug.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&drug).Error; err != nil {
		utils.InternalServerError(c, "Failed to update drug: "+err.Error())
		return
	}
	utils.Success(c, "Drug updated successfully", drug)
}
