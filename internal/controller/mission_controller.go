package controller

import (
	"war-room-be/internal/dto"
	"war-room-be/internal/pkg/serverutils"
	"war-room-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMissionController interface {
	RegisterRoutes(r fiber.Router)
	CreateMission(ctx *fiber.Ctx) error
	GetMission(ctx *fiber.Ctx) error
	GetAllMissions(ctx *fiber.Ctx) error
	UpdateMission(ctx *fiber.Ctx) error
	DeleteMission(ctx *fiber.Ctx) error
}

type missionController struct {
	missionService service.IMissionService
}

func NewMissionController(missionService service.IMissionService) IMissionController {
	return &missionController{
		missionService: missionService,
	}
}

func (c *missionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/mission/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.CreateMission)
	h.Get("", c.GetAllMissions)
	h.Get(":id", c.GetMission)
	h.Put(":id", c.UpdateMission)
	h.Delete(":id", c.DeleteMission)
}

func (c *missionController) CreateMission(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.CreateMissionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.missionService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create mission", res))
}

func (c *missionController) GetMission(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid mission id")
	}

	res, err := c.missionService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get mission", res))
}

func (c *missionController) GetAllMissions(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.missionService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get missions", res))
}

func (c *missionController) UpdateMission(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid mission id")
	}

	var req dto.UpdateMissionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.missionService.Update(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update mission", nil))
}

func (c *missionController) DeleteMission(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid mission id")
	}

	if err := c.missionService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete mission", nil))
}
