package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hivcare-app-server/internal/clinical"
	"hivcare-app-server/internal/middleware"
	"hivcare-app-server/internal/models"
	"hivcare-app-server/internal/utils"
)

// LabOrderHandler handles laboratory orders and their progression.
type LabOrderHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// NewLabOrderHandler creates a new LabOrderHandler.
func NewLabOrderHandler(db *gorm.DB, log *zap.Logger) *LabOrderHandler {
	return &LabOrderHandler{DB: db, Log: log}
}

// CreateLabOrderRequest represents the request body for a manual order.
type CreateLabOrderRequest struct {
	PatientID  string `json:"patientId" binding:"required,uuid"`
	TestType   string `json:"testType" binding:"required"`
	Indication string `json:"indication"`
}

// CreateLabOrder places a manual laboratory order.
func (h *LabOrderHandler) CreateLabOrder(c *gin.Context) {
	var req CreateLabOrderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	order := models.LabOrder{
		OrderNumber: clinical.NewDocumentNumber("LAB", time.Now()),
		PatientID:   req.PatientID,
		OrderedByID: userID,
		TestType:    req.TestType,
		Indication:  req.Indication,
		Status:      models.LabOrderOrdered,
	}
	if err := h.DB.Create(&order).Error; err != nil {
		utils.InternalServerError(c, "Failed to create lab order: "+err.Error())
		return
	}
	utils.Created(c, "Lab order created", order)
}

// GetLabOrders lists lab orders, optionally filtered by patient or status.
func (h *LabOrderHandler) GetLabOrders(c *gin.Context) {
	query := h.DB.Order("created_at desc")
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.LabOrder
	if err := query.Find(&orders).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch lab orders: "+err.Error())
		return
	}
	utils.Success(c, "Lab orders fetched successfully", orders)
}

// applyTransition runs a status transition in one transaction: the
// order row is locked, the guard runs against the status as stored, and
// the mutation is persisted. Guarding on the locked row keeps a
// concurrent transition from overwriting a status that already moved.
func (h *LabOrderHandler) applyTransition(c *gin.Context, decide func(models.LabOrderStatus) (models.LabOrderStatus, error), mutate func(*models.LabOrder)) (*models.LabOrder, bool) {
	var order models.LabOrder
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}

		status, err := decide(order.Status)
		if err != nil {
			return err
		}
		order.Status = status
		if mutate != nil {
			mutate(&order)
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Lab order not found")
		} else {
			respondClinicalError(c, err)
		}
		return nil, false
	}
	return &order, true
}

// CollectSample marks the order's sample as collected.
func (h *LabOrderHandler) CollectSample(c *gin.Context) {
	order, ok := h.applyTransition(c, clinical.CollectSample, func(o *models.LabOrder) {
		now := time.Now()
		o.CollectedAt = &now
	})
	if !ok {
		return
	}
	utils.Success(c, "Sample collected", order)
}

// BeginProcessing marks a collected sample as being run.
func (h *LabOrderHandler) BeginProcessing(c *gin.Context) {
	order, ok := h.applyTransition(c, clinical.BeginProcessing, nil)
	if !ok {
		return
	}
	utils.Success(c, "Processing started", order)
}

// EnterResultRequest represents the request body for entering a result.
type EnterResultRequest struct {
	ResultValue          string `json:"resultValue" binding:"required"`
	ResultUnit           string `json:"resultUnit"`
	ResultInterpretation string `json:"resultInterpretation"`
}

// EnterResult records the test result once the sample is in hand.
func (h *LabOrderHandler) EnterResult(c *gin.Context) {
	var req EnterResultRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	order, ok := h.applyTransition(c, func(current models.LabOrderStatus) (models.LabOrderStatus, error) {
		return clinical.EnterResult(current, clinical.LabResultInput{
			Value:          req.ResultValue,
			Unit:           req.ResultUnit,
			Interpretation: req.ResultInterpretation,
		})
	}, func(o *models.LabOrder) {
		now := time.Now()
		o.ResultValue = req.ResultValue
		o.ResultUnit = req.ResultUnit
		o.ResultInterpretation = req.ResultInterpretation
		o.ResultEnteredAt = &now
	})
	if !ok {
		return
	}

	h.Log.Info("lab result entered",
		zap.String("order", order.OrderNumber),
		zap.String("testType", order.TestType),
	)
	utils.Success(c, "Result entered", order)
}

// ReviewResult marks a completed result as reviewed.
func (h *LabOrderHandler) ReviewResult(c *gin.Context) {
	order, ok := h.applyTransition(c, clinical.ReviewResult, func(o *models.LabOrder) {
		now := time.Now()
		o.ReviewedAt = &now
	})
	if !ok {
		return
	}
	utils.Success(c, "Result reviewed", order)
}

// CancelOrder withdraws an order before sample collection.
func (h *LabOrderHandler) CancelOrder(c *gin.Context) {
	order, ok := h.applyTransition(c, clinical.CancelOrder, nil)
	if !ok {
		return
	}
	utils.Success(c, "Lab order cancelled", order)
}

// RejectSample discards a collected sample.
func (h *LabOrderHandler) RejectSample(c *gin.Context) {
	order, ok := h.applyTransition(c, clinical.RejectSample, nil)
	if !ok {
		return
	}
	utils.Success(c, "Sample rejected", order)
}
