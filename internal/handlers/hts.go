package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hivcare-app-server/internal/clinical"
	"hivcare-app-server/internal/models"
	"hivcare-app-server/internal/utils"
)

// HTSHandler handles HIV testing services records.
type HTSHandler struct {
	DB *gorm.DB
}

// NewHTSHandler creates a new HTSHandler.
func NewHTSHandler(db *gorm.DB) *HTSHandler {
	return &HTSHandler{DB: db}
}

// CreateHTSRecordRequest represents the request body for recording a test.
type CreateHTSRecordRequest struct {
	PatientID     string    `json:"patientId" binding:"required,uuid"`
	TestDate      time.Time `json:"testDate" binding:"required"`
	TestType      string    `json:"testType" binding:"required"`
	EntryPoint    string    `json:"entryPoint"`
	FinalResult   string    `json:"finalResult" binding:"required,oneof=Reactive Non-Reactive Indeterminate"`
	ResultIssued  bool      `json:"resultIssued"`
	CounselorName string    `json:"counselorName"`
}

// CreateHTSRecord records a completed HIV test.
func (h *HTSHandler) CreateHTSRecord(c *gin.Context) {
	var req CreateHTSRecordRequest
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

	record := models.HTSRecord{
		PatientID:     req.PatientID,
		TestNumber:    clinical.NewDocumentNumber("HTS", time.Now()),
		TestDate:      req.TestDate,
		TestType:      req.TestType,
		EntryPoint:    req.EntryPoint,
		FinalResult:   models.HTSResult(req.FinalResult),
		ResultIssued:  req.ResultIssued,
		CounselorName: req.CounselorName,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to create HTS record: "+err.Error())
		return
	}

	utils.Created(c, "HTS record created", record)
}

// GetHTSRecords lists testing records, optionally filtered by patient.
func (h *HTSHandler) GetHTSRecords(c *gin.Context) {
	query := h.DB.Order("test_date desc")
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}

	var records []models.HTSRecord
	if err := query.Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch HTS records: "+err.Error())
		return
	}
	utils.Success(c, "HTS records fetched successfully", records)
}

// GetEligibleRecords lists the HTS records still available for the
// given program (PEP or PrEP): all qualifying records minus those
// already linked to an active enrollment. Recomputed on every request.
func (h *HTSHandler) GetEligibleRecords(c *gin.Context) {
	program := models.Program(c.Param("program"))
	if program != models.ProgramPEP && program != models.ProgramPrEP {
		utils.BadRequest(c, "Program must be PEP or PREP")
		return
	}

	query := h.DB.Where("final_result <> ''")
	if program == models.ProgramPrEP {
		// PrEP candidates must have tested non-reactive.
		query = query.Where("final_result = ?", models.HTSResultNonReactive)
	}
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}

	var all []models.HTSRecord
	if err := query.Order("test_date desc").Find(&all).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch HTS records: "+err.Error())
		return
	}

	var consumedIDs []string
	err := h.DB.Model(&models.Enrollment{}).
		Where("program = ? AND status = ? AND hts_record_id <> ''", program, models.EnrollmentActive).
		Pluck("hts_record_id", &consumedIDs).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch consumed records: "+err.Error())
		return
	}

	utils.Success(c, "Eligible HTS records fetched successfully", clinical.EligibleHTSRecords(all, consumedIDs))
}
