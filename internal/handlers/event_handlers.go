package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mioNacs/BLManagementSystem/internal/models"
	"github.com/mioNacs/BLManagementSystem/internal/services"
)

type EventHandler struct {
	svc    services.EventService
	logger *zap.SugaredLogger
}

func NewEventHandler(svc services.EventService, logger *zap.SugaredLogger) *EventHandler {
	return &EventHandler{svc: svc, logger: logger}
}

type eventReq struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	StartingDate string `json:"startingDate"`
	Time         string `json:"time"`
	Location     string `json:"location"`
	Category     string `json:"category"`
	Status       string `json:"status"`
}

func (r *eventReq) toModel() *models.Event {
	return &models.Event{
		Title:        r.Title,
		Description:  r.Description,
		StartingDate: r.StartingDate,
		Time:         r.Time,
		Location:     r.Location,
		Category:     r.Category,
		Status:       r.Status,
	}
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req eventReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Description == "" || req.StartingDate == "" || req.Time == "" || req.Location == "" {
		return fiber.NewError(fiber.StatusBadRequest, "All fields are required")
	}

	created, err := h.svc.Create(c.Context(), req.toModel())
	if err != nil {
		h.logger.Errorw("event create failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Internal server error while creating event")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	events, err := h.svc.List(c.Context())
	if err != nil {
		h.logger.Errorw("event list failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Internal server error while fetching events")
	}
	return c.JSON(events)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid event id")
	}

	var req eventReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.svc.Update(c.Context(), id, req.toModel())
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Event not found")
		}
		h.logger.Errorw("event update failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Internal server error while updating event")
	}
	return c.JSON(updated)
}
