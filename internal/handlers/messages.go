package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/realtime"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/types"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/gorm"
)

// MessageHandler handles point-to-point message routes
type MessageHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

type messageSendRequest struct {
	ProjectID   *types.FlexUint64            `json:"projectId"`
	ReceiverIDs types.FlexList[types.FlexUint64] `json:"receiverIds"`
	Body        string                       `json:"body"`
	MessageType models.MessageType           `json:"messageType"`
}

// Send handles POST /api/messages
// @Summary Send a message
// @Description One persisted row per receiver; connected project subscribers get a best-effort new-message event afterwards
// @Tags Messages
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body messageSendRequest true "message"
// @Success 201 {array} models.Message
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /messages [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var req messageSendRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "messages.send")
	}

	in := services.MessageInput{
		Body:        req.Body,
		MessageType: req.MessageType,
		ReceiverIDs: lo.Map(req.ReceiverIDs.Slice(), func(id types.FlexUint64, _ int) uint64 {
			return id.Uint64()
		}),
	}
	if req.ProjectID != nil {
		projectID := req.ProjectID.Uint64()
		in.ProjectID = &projectID
	}

	messages, err := services.SendMessage(h.DB, principal(c).UserID, in)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	// Persistence already succeeded; the fan-out is best-effort.
	if in.ProjectID != nil {
		h.Hub.Broadcast(*in.ProjectID, realtime.EventNewMessage, messages)
	}
	return utils.DataResponse(c, messages, fiber.StatusCreated)
}

// List handles GET /api/messages
// @Summary List my messages
// @Description Newest first; with narrows to one conversation, project to one project
// @Tags Messages
// @Produce json
// @Security Bearer
// @Param with query int false "other user ID"
// @Param project query int false "project ID"
// @Success 200 {array} models.Message
// @Router /messages [get]
func (h *MessageHandler) List(c *fiber.Ctx) error {
	with, err := queryID(c, "with")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	projectID, err := queryID(c, "project")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	messages, err := services.ListMessages(h.DB, principal(c).UserID, with, projectID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, messages, fiber.StatusOK)
}

// MarkRead handles PATCH /api/messages/:id/read
// @Summary Mark a message read
// @Description Only the receiver may mark a message; re-marking is a no-op
// @Tags Messages
// @Produce json
// @Security Bearer
// @Param id path int true "Message ID"
// @Success 200 {object} models.Message
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /messages/{id}/read [patch]
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	msg, err := services.MarkMessageRead(h.DB, id, principal(c).UserID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, msg, fiber.StatusOK)
}
