package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mioNacs/BLManagementSystem/internal/models"
	"github.com/mioNacs/BLManagementSystem/internal/repository"
)

var ErrEventNotFound = errors.New("Event not found")

// EventService is a thin passthrough over the event repository.
type EventService interface {
	Create(ctx context.Context, e *models.Event) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, e *models.Event) (*models.Event, error)
}

type eventService struct {
	events repository.EventRepository
}

func NewEventService(events repository.EventRepository) EventService {
	return &eventService{events: events}
}

func (s *eventService) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	if err := s.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return e, nil
}

func (s *eventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return events, nil
}

func (s *eventService) Update(ctx context.Context, id primitive.ObjectID, e *models.Event) (*models.Event, error) {
	updated, err := s.events.UpdateByID(ctx, id, e)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return updated, nil
}
