package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hivcare-app-server/internal/clinical"
	"hivcare-app-server/internal/middleware"
	"hivcare-app-server/internal/models"
	"hivcare-app-server/internal/utils"
)

// PrescriptionHandler handles prescription submission and lookup.
type PrescriptionHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(db *gorm.DB, log *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{DB: db, Log: log}
}

// PrescriptionItemRequest is one drug line in a submission.
type PrescriptionItemRequest struct {
	DrugID             string `json:"drugId" binding:"required"`
	Dosage             string `json:"dosage"`
	Frequency          string `json:"frequency" binding:"required"`
	DurationDays       int    `json:"durationDays"`
	QuantityPrescribed int    `json:"quantityPrescribed"`
	Instructions       string `json:"instructions"`
}

// CreatePrescriptionRequest represents the request body for a prescription.
type CreatePrescriptionRequest struct {
	PatientID     string                    `json:"patientId" binding:"required,uuid"`
	Diagnosis     string                    `json:"diagnosis"`
	ClinicalNotes string                    `json:"clinicalNotes"`
	Items         []PrescriptionItemRequest `json:"items" binding:"required"`
}

// CreatePrescription validates a multi-item prescription against the
// drug catalog snapshot and persists it. Insufficient stock never
// blocks; it is returned as per-item warnings.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req CreatePrescriptionRequest
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

	// Immutable catalog snapshot for this decision.
	var drugs []models.Drug
	if err := h.DB.Where("is_active = ?", true).Find(&drugs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch drug catalog: "+err.Error())
		return
	}
	catalog := make(map[string]models.Drug, len(drugs))
	for _, d := range drugs {
		catalog[d.ID] = d
	}

	input := clinical.PrescriptionInput{
		PatientID:     req.PatientID,
		Diagnosis:     req.Diagnosis,
		ClinicalNotes: req.ClinicalNotes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, clinical.CompleteItemDose(clinical.PrescriptionItemInput{
			DrugID:             item.DrugID,
			Dosage:             item.Dosage,
			Frequency:          models.Frequency(item.Frequency),
			DurationDays:       item.DurationDays,
			QuantityPrescribed: item.QuantityPrescribed,
			Instructions:       item.Instructions,
		}))
	}

	flags, err := clinical.ValidatePrescription(input, catalog)
	if err != nil {
		respondClinicalError(c, err)
		return
	}

	prescriberID, _ := middleware.GetUserIDFromContext(c)
	prescription := models.Prescription{
		PrescriptionNumber: clinical.NewDocumentNumber("RX", time.Now()),
		PatientID:          req.PatientID,
		PrescriberID:       prescriberID,
		Diagnosis:          req.Diagnosis,
		ClinicalNotes:      req.ClinicalNotes,
		Status:             models.PrescriptionPending,
	}
	for _, item := range input.Items {
		prescription.Items = append(prescription.Items, models.PrescriptionItem{
			DrugID:             item.DrugID,
			Dosage:             item.Dosage,
			Frequency:          item.Frequency,
			DurationDays:       item.DurationDays,
			QuantityPrescribed: item.QuantityPrescribed,
			Instructions:       item.Instructions,
		})
	}

	if err := h.DB.Create(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to create prescription: "+err.Error())
		return
	}

	warnings := clinical.StockWarnings(flags)
	if len(warnings) > 0 {
		h.Log.Warn("prescription exceeds on-hand stock",
			zap.String("prescription", prescription.PrescriptionNumber),
			zap.Int("flaggedItems", len(warnings)),
		)
		utils.CreatedWithWarnings(c, "Prescription created", prescription, warnings)
		return
	}
	utils.Created(c, "Prescription created", prescription)
}

// GetPrescriptions lists prescriptions, optionally filtered by patient or status.
func (h *PrescriptionHandler) GetPrescriptions(c *gin.Context) {
	query := h.DB.Preload("Items").Order("created_at desc")
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var prescriptions []models.Prescription
	if err := query.Find(&prescriptions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}
	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}

// GetPrescriptionByID fetches a single prescription with its items.
func (h *PrescriptionHandler) GetPrescriptionByID(c *gin.Context) {
	var prescription models.Prescription
	if err := h.DB.Preload("Items").First(&prescription, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Prescription not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Prescription fetched successfully", prescription)
}
