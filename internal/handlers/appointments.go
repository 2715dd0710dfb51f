package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hivcare-app-server/internal/clinical"
	"hivcare-app-server/internal/models"
	"hivcare-app-server/internal/utils"
)

// AppointmentHandler handles the appointment lifecycle.
type AppointmentHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Log: log}
}

// ScheduleAppointmentRequest represents the request body for scheduling a visit.
type ScheduleAppointmentRequest struct {
	PatientID       string    `json:"patientId" binding:"required,uuid"`
	ClinicianID     string    `json:"clinicianId" binding:"required,uuid"`
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	AppointmentTime string    `json:"appointmentTime"`
	AppointmentType string    `json:"appointmentType" binding:"required"`
	Reason          string    `json:"reason" binding:"required"`
	Notes           string    `json:"notes"`
}

// ScheduleAppointment creates a new appointment in the Scheduled state.
func (h *AppointmentHandler) ScheduleAppointment(c *gin.Context) {
	var req ScheduleAppointmentRequest
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

	var clinician models.User
	if err := h.DB.Where("id = ? AND role = ?", req.ClinicianID, models.RoleClinician).First(&clinician).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Clinician not found or user is not a clinician")
		} else {
			utils.InternalServerError(c, "Database error verifying clinician: "+err.Error())
		}
		return
	}

	if req.AppointmentDate.Before(time.Now().Truncate(24 * time.Hour)) {
		utils.BadRequest(c, "Appointment date must not be in the past.")
		return
	}

	appointment := models.Appointment{
		AppointmentNumber: clinical.NewDocumentNumber("APT", time.Now()),
		PatientID:         req.PatientID,
		ClinicianID:       req.ClinicianID,
		AppointmentDate:   req.AppointmentDate,
		AppointmentTime:   req.AppointmentTime,
		AppointmentType:   req.AppointmentType,
		Reason:            req.Reason,
		Notes:             req.Notes,
		Status:            models.StatusScheduled,
	}

	if err := h.DB.Create(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	utils.Created(c, "Appointment scheduled successfully", appointment)
}

// GetAppointments lists appointments, optionally filtered by patient or status.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	query := h.DB.Preload("VisitDetails").Order("appointment_date asc")
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID fetches a single appointment with its visit details.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	var appointment models.Appointment
	if err := h.DB.Preload("VisitDetails").First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// applyDecision runs a lifecycle transition in one transaction: the
// appointment row is locked, the decision is made against the status as
// stored, and the decision plus its side-effect commands are persisted
// together. Deciding on the locked row is what keeps two concurrent
// transitions from both landing; the loser's decide call sees the
// winner's status and returns the matching rejection.
func (h *AppointmentHandler) applyDecision(c *gin.Context, decide func(models.AppointmentStatus) (clinical.AppointmentDecision, error)) (*models.Appointment, bool) {
	var appointment models.Appointment
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}

		decision, err := decide(appointment.Status)
		if err != nil {
			return err
		}

		appointment.Status = decision.Status
		if decision.CancellationReason != "" {
			appointment.CancellationReason = decision.CancellationReason
		}
		if decision.ClinicalSummary != "" {
			appointment.ClinicalSummary = decision.ClinicalSummary
		}
		if err := tx.Save(&appointment).Error; err != nil {
			return err
		}

		for _, cmd := range decision.Commands {
			switch command := cmd.(type) {
			case clinical.CreateVisitDetails:
				visit := models.VisitDetails{
					AppointmentID:         appointment.ID,
					ChiefComplaint:        command.ChiefComplaint,
					Assessment:            command.Assessment,
					Diagnosis:             command.Diagnosis,
					TreatmentPlan:         command.TreatmentPlan,
					LabTestsOrdered:       command.LabTestsOrdered,
					DrugsPrescribed:       command.DrugsPrescribed,
					CounselingProvided:    command.CounselingProvided,
					ReferralMade:          command.ReferralMade,
					NextAppointmentDate:   command.NextAppointmentDate,
					NextAppointmentReason: command.NextAppointmentReason,
				}
				if err := tx.Create(&visit).Error; err != nil {
					return err
				}
			case clinical.NotifyPatient:
				notification := models.Notification{
					PatientID:     appointment.PatientID,
					AppointmentID: appointment.ID,
					Type:          command.Type,
					Message:       command.Message,
				}
				if err := tx.Create(&notification).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			respondClinicalError(c, err)
		}
		return nil, false
	}
	return &appointment, true
}

// CheckIn handles the check-in transition.
func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	appointment, ok := h.applyDecision(c, clinical.CheckIn)
	if !ok {
		return
	}
	utils.Success(c, "Patient checked in", appointment)
}

// StartVisit handles the start-visit transition.
func (h *AppointmentHandler) StartVisit(c *gin.Context) {
	appointment, ok := h.applyDecision(c, clinical.StartVisit)
	if !ok {
		return
	}
	utils.Success(c, "Visit started", appointment)
}

// MarkNoShow handles the mark-no-show transition.
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	appointment, ok := h.applyDecision(c, clinical.MarkNoShow)
	if !ok {
		return
	}
	utils.Success(c, "Appointment marked as no-show", appointment)
}

// CancelAppointmentRequest represents the request body for cancellation.
type CancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason" binding:"required"`
}

// Cancel handles the cancel transition.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req CancelAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, ok := h.applyDecision(c, func(current models.AppointmentStatus) (clinical.AppointmentDecision, error) {
		return clinical.Cancel(current, req.CancellationReason)
	})
	if !ok {
		return
	}
	utils.Success(c, "Appointment cancelled", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling.
type RescheduleAppointmentRequest struct {
	NewAppointmentDate time.Time `json:"newAppointmentDate" binding:"required"`
	NewAppointmentTime string    `json:"newAppointmentTime"`
	Reason             string    `json:"reason" binding:"required"`
}

// Reschedule terminal-states the current appointment and books the
// replacement visit in the same transaction.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	var replacement models.Appointment
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}

		decision, err := clinical.Reschedule(appointment.Status, clinical.RescheduleInput{
			NewDate: req.NewAppointmentDate,
			NewTime: req.NewAppointmentTime,
			Reason:  req.Reason,
		})
		if err != nil {
			return err
		}

		appointment.Status = decision.Status
		if err := tx.Save(&appointment).Error; err != nil {
			return err
		}

		replacement = models.Appointment{
			AppointmentNumber: clinical.NewDocumentNumber("APT", time.Now()),
			PatientID:         appointment.PatientID,
			ClinicianID:       appointment.ClinicianID,
			AppointmentDate:   *decision.NewDate,
			AppointmentTime:   decision.NewTime,
			AppointmentType:   appointment.AppointmentType,
			Reason:            appointment.Reason,
			Notes:             "Rescheduled from " + appointment.AppointmentNumber + ": " + req.Reason,
			Status:            models.StatusScheduled,
		}
		if err := tx.Create(&replacement).Error; err != nil {
			return err
		}

		for _, cmd := range decision.Commands {
			if command, isNotify := cmd.(clinical.NotifyPatient); isNotify {
				notification := models.Notification{
					PatientID:     appointment.PatientID,
					AppointmentID: appointment.ID,
					Type:          command.Type,
					Message:       command.Message,
				}
				if err := tx.Create(&notification).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			respondClinicalError(c, err)
		}
		return
	}

	h.Log.Info("appointment rescheduled",
		zap.String("appointment", appointment.AppointmentNumber),
		zap.String("replacement", replacement.AppointmentNumber),
	)
	utils.Success(c, "Appointment rescheduled", replacement)
}

// VisitDetailsRequest captures the clinical outcome fields of a visit.
type VisitDetailsRequest struct {
	ChiefComplaint        string     `json:"chiefComplaint"`
	Assessment            string     `json:"assessment"`
	Diagnosis             string     `json:"diagnosis"`
	TreatmentPlan         string     `json:"treatmentPlan"`
	LabTestsOrdered       bool       `json:"labTestsOrdered"`
	DrugsPrescribed       bool       `json:"drugsPrescribed"`
	CounselingProvided    bool       `json:"counselingProvided"`
	ReferralMade          bool       `json:"referralMade"`
	NextAppointmentDate   *time.Time `json:"nextAppointmentDate"`
	NextAppointmentReason string     `json:"nextAppointmentReason"`
}

// CompleteAppointmentRequest represents the request body for completing a visit.
type CompleteAppointmentRequest struct {
	ClinicalSummary string              `json:"clinicalSummary" binding:"required"`
	VisitDetails    VisitDetailsRequest `json:"visitDetails"`
}

// Complete handles the complete transition and writes the VisitDetails
// record the decision emits.
func (h *AppointmentHandler) Complete(c *gin.Context) {
	var req CompleteAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, ok := h.applyDecision(c, func(current models.AppointmentStatus) (clinical.AppointmentDecision, error) {
		return clinical.Complete(current, clinical.CompleteInput{
			ClinicalSummary: req.ClinicalSummary,
			Visit: clinical.CreateVisitDetails{
				ChiefComplaint:        req.VisitDetails.ChiefComplaint,
				Assessment:            req.VisitDetails.Assessment,
				Diagnosis:             req.VisitDetails.Diagnosis,
				TreatmentPlan:         req.VisitDetails.TreatmentPlan,
				LabTestsOrdered:       req.VisitDetails.LabTestsOrdered,
				DrugsPrescribed:       req.VisitDetails.DrugsPrescribed,
				CounselingProvided:    req.VisitDetails.CounselingProvided,
				ReferralMade:          req.VisitDetails.ReferralMade,
				NextAppointmentDate:   req.VisitDetails.NextAppointmentDate,
				NextAppointmentReason: req.VisitDetails.NextAppointmentReason,
			},
		})
	})
	if !ok {
		return
	}

	h.Log.Info("visit completed", zap.String("appointment", appointment.AppointmentNumber))
	utils.Success(c, "Visit completed", appointment)
}
