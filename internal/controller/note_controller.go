package controller

import (
	"time"

	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/pkg/serverutils"
	"golden-notes-be/internal/repository/memory"
	"golden-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Clients that track edit sessions send this header so the server can tell
// which note each session is currently bound to.
const sessionIDHeader = "X-Session-Id"

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetUserNotes(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Patch(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService       service.INoteService
	editSessions      *memory.EditSessionRepository
	sessionMiddleware fiber.Handler
}

func NewNoteController(
	noteService service.INoteService,
	editSessions *memory.EditSessionRepository,
	sessionMiddleware fiber.Handler,
) INoteController {
	return &noteController{
		noteService:       noteService,
		editSessions:      editSessions,
		sessionMiddleware: sessionMiddleware,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Use(c.sessionMiddleware)
	h.Post("", c.Create)
	h.Get("all", c.GetUserNotes)
	h.Get(":id", c.Show)
	h.Patch(":id", c.Patch)
	h.Delete(":id", c.Delete)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) GetUserNotes(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.noteService.GetUserNotes(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get notes", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	res, err := c.noteService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	// Opening a note rebinds the caller's edit session to it.
	if sessionID := ctx.Get(sessionIDHeader); sessionID != "" {
		c.editSessions.Save(&memory.EditSession{
			SessionID: sessionID,
			OwnerID:   userId,
			NoteID:    id,
			StartedAt: time.Now(),
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Patch(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	var req dto.PatchNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// A save arriving from a session already bound to another note is stale
	// and must not land.
	if sessionID := ctx.Get(sessionIDHeader); sessionID != "" {
		if _, ok := c.editSessions.Get(sessionID); ok && !c.editSessions.IsEditing(sessionID, id) {
			return fiber.NewError(fiber.StatusConflict, "session is no longer editing this note")
		}
		c.editSessions.Touch(sessionID)
	}

	res, err := c.noteService.Patch(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success patch note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	if err := c.noteService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	if sessionID := ctx.Get(sessionIDHeader); sessionID != "" {
		c.editSessions.Delete(sessionID)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete note", nil))
}
