package handlers

import (
	"context"
	"log/slog"

	"github.com/gdg-garage/crawl-registration-api/internal/availability"
	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
)

type PublicHandler struct {
	catalog      *catalog.Catalog
	availability *availability.Aggregator
	logger       *slog.Logger
}

func NewPublicHandler(c *catalog.Catalog, a *availability.Aggregator, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{catalog: c, availability: a, logger: logger}
}

type LocationsResponse struct {
	Body map[string][]models.Location
}

func (h *PublicHandler) HandleLocations(ctx context.Context, _ *struct{}) (*LocationsResponse, error) {
	byDay, err := h.catalog.LocationsByDay(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch locations", slog.Any("error", err))
		return nil, apiError(err, "Failed to fetch locations")
	}
	return &LocationsResponse{Body: byDay}, nil
}

type EventsResponse struct {
	Body struct {
		Events    []catalog.EventWithLocations `json:"events"`
		Locations []models.Location            `json:"locations"`
	}
}

func (h *PublicHandler) HandleEvents(ctx context.Context, _ *struct{}) (*EventsResponse, error) {
	events, err := h.catalog.EventsWithLocations(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch events", slog.Any("error", err))
		return nil, apiError(err, "Failed to fetch events")
	}
	locations, err := h.catalog.Locations(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch events", slog.Any("error", err))
		return nil, apiError(err, "Failed to fetch events")
	}
	res := &EventsResponse{}
	res.Body.Events = events
	res.Body.Locations = locations
	return res, nil
}

type LocationAvailabilityResponse struct {
	Body struct {
		Locations []availability.LocationAvailability `json:"locations"`
	}
}

func (h *PublicHandler) HandleLocationAvailability(ctx context.Context, _ *struct{}) (*LocationAvailabilityResponse, error) {
	locations, err := h.availability.Locations(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch location availability", slog.Any("error", err))
		return nil, apiError(err, "Failed to fetch location availability")
	}
	res := &LocationAvailabilityResponse{}
	res.Body.Locations = locations
	return res, nil
}

type AvailabilityResponse struct {
	Body map[string]availability.DayAvailability
}

func (h *PublicHandler) HandleAvailability(ctx context.Context, _ *struct{}) (*AvailabilityResponse, error) {
	days, err := h.availability.Days(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch availability", slog.Any("error", err))
		return nil, apiError(err, "Failed to fetch availability")
	}
	res := &AvailabilityResponse{Body: make(map[string]availability.DayAvailability, len(days))}
	for label, d := range days {
		res.Body[string(label)] = d
	}
	return res, nil
}
