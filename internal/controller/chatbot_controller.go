package controller

import (
	"errors"

	"smartcity-be/internal/dto"
	"smartcity-be/internal/pkg/serverutils"
	"smartcity-be/internal/service"
	"smartcity-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetTranscript(ctx *fiber.Ctx) error
	CloseSession(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	GetSuggestions(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1")
	h.Get("suggestions", c.GetSuggestions)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions/:id/transcript", c.GetTranscript)
	h.Delete("sessions/:id", c.CloseSession)
	h.Post("chat", c.SendChat)
}

func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.chatbotService.CreateSession(ctx.UserContext())
	if err != nil {
		return err
	}

	body := serverutils.SuccessResponse("Success create chat session", res)
	body.Code = fiber.StatusCreated
	return ctx.Status(fiber.StatusCreated).JSON(body)
}

func (c *chatbotController) GetTranscript(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	turns, err := c.chatbotService.GetTranscript(ctx.UserContext(), id)
	if err != nil {
		return mapChatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get transcript", dto.GetTranscriptResponse{
		ChatSessionId: id,
		Turns:         turns,
	}))
}

func (c *chatbotController) CloseSession(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	if !c.chatbotService.CloseSession(ctx.UserContext(), id) {
		return mapChatError(service.ErrSessionNotFound)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success close chat session", nil))
}

// SendChat accepts the user's turn. The assistant reply follows later over
// the session's WebSocket and in the transcript.
func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.chatbotService.SendChat(ctx.UserContext(), req.ChatSessionId, req.Chat)
	if err != nil {
		return mapChatError(err)
	}

	body := serverutils.SuccessResponse("Chat accepted", res)
	body.Code = fiber.StatusAccepted
	return ctx.Status(fiber.StatusAccepted).JSON(body)
}

func (c *chatbotController) GetSuggestions(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get suggestions", c.chatbotService.GetSuggestions(ctx.UserContext())))
}

func mapChatError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyChat):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionBusy):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, store.ErrSessionClosed):
		return fiber.NewError(fiber.StatusGone, err.Error())
	}
	return err
}
