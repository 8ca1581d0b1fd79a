package controller

import (
	"github.com/gofiber/fiber/v2"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"
)

type ILeadController interface {
	RegisterRoutes(r fiber.Router)
	SubmitQuote(ctx *fiber.Ctx) error
	SubmitContact(ctx *fiber.Ctx) error
}

type leadController struct {
	leadService service.ILeadService
}

func NewLeadController(leadService service.ILeadService) ILeadController {
	return &leadController{leadService: leadService}
}

func (c *leadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/lead/v1")
	h.Post("quote", c.SubmitQuote)
	h.Post("contact", c.SubmitContact)
}

func (c *leadController) SubmitQuote(ctx *fiber.Ctx) error {
	var req dto.QuoteLeadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	leadId, err := c.leadService.SubmitQuote(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit quote", fiber.Map{"lead_id": leadId}))
}

func (c *leadController) SubmitContact(ctx *fiber.Ctx) error {
	var req dto.ContactLeadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	leadId, err := c.leadService.SubmitContact(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit contact", fiber.Map{"lead_id": leadId}))
}
