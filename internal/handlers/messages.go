package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hivcare-app-server/internal/middleware"
	"hivcare-app-server/internal/models"
	"hivcare-app-server/internal/utils"
)

// MessageHandler handles staff-patient messaging.
type MessageHandler struct {
	DB *gorm.DB
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{DB: db}
}

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	RecipientID     string `json:"recipientId" binding:"required,uuid"`
	Content         string `json:"content" binding:"required"`
	Subject         string `json:"subject"`
	ParentMessageID string `json:"parentMessageId"`
}

// SendMessage handles sending a new message. Patients message clinic
// staff; staff message patients or each other.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	senderID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Sender ID not found in token")
		return
	}
	if senderID == req.RecipientID {
		utils.BadRequest(c, "Cannot send a message to yourself.")
		return
	}

	var recipient models.User
	if err := h.DB.First(&recipient, "id = ?", req.RecipientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Recipient user not found")
		} else {
			utils.InternalServerError(c, "Database error verifying recipient: "+err.Error())
		}
		return
	}

	senderRole, _ := middleware.GetUserRoleFromContext(c)
	// Patient-to-patient messaging is not allowed; everything else is.
	if senderRole == models.RolePatient && recipient.Role == models.RolePatient {
		utils.Forbidden(c, "You are not authorized to send a message to this user.")
		return
	}

	message := models.Message{
		SenderID:   senderID,
		ReceiverID: req.RecipientID,
		ParentID:   req.ParentMessageID,
		Subject:    req.Subject,
		Content:    req.Content,
		Status:     models.MessageStatusSent,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		utils.InternalServerError(c, "Failed to send message: "+err.Error())
		return
	}

	utils.Created(c, "Message sent successfully", message)
}

// GetMessagesForUser fetches messages involving the logged-in user,
// optionally restricted to one correspondent via ?with=<user-id>.
func (h *MessageHandler) GetMessagesForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	query := h.DB.Preload("Sender").Preload("Receiver").Order("created_at asc")
	if with := c.Query("with"); with != "" {
		query = query.Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, with, with, userID,
		)
	} else {
		query = query.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}
	utils.Success(c, "Messages fetched successfully", messages)
}

// MarkMessageAsRead marks a received message as read.
func (h *MessageHandler) MarkMessageAsRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var message models.Message
	if err := h.DB.First(&message, "id = ?", c.Param("messageId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Message not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if message.ReceiverID != userID {
		utils.Forbidden(c, "Only the recipient can mark a message as read.")
		return
	}

	if message.Status != models.MessageStatusRead {
		now := time.Now()
		message.Status = models.MessageStatusRead
		message.ReadAt = &now
		if err := h.DB.Save(&message).Error; err != nil {
			utils.InternalServerError(c, "Failed to update message: "+err.Error())
			return
		}
	}

	utils.Success(c, "Message marked as read", message)
}
