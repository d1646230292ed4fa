package controller

import (
	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/pkg/serverutils"
	"golden-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INotebookController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type notebookController struct {
	notebookService   service.INotebookService
	sessionMiddleware fiber.Handler
}

func NewNotebookController(notebookService service.INotebookService, sessionMiddleware fiber.Handler) INotebookController {
	return &notebookController{
		notebookService:   notebookService,
		sessionMiddleware: sessionMiddleware,
	}
}

func (c *notebookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notebook/v1")
	h.Use(c.sessionMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *notebookController) GetAll(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.notebookService.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get notebooks", res))
}

func (c *notebookController) Create(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	var req dto.CreateNotebookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.notebookService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create notebook", res))
}

func (c *notebookController) Show(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid notebook id")
	}

	res, err := c.notebookService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show notebook", res))
}

func (c *notebookController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid notebook id")
	}

	if err := c.notebookService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete notebook", nil))
}

// currentUserID reads the identity the session middleware stashed in Locals.
func currentUserID(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals(serverutils.UserIDLocal).(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}
