package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/crawl-registration-api/internal/auth"
	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/config"
	"github.com/gdg-garage/crawl-registration-api/internal/export"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/reminders"
	"github.com/gdg-garage/crawl-registration-api/internal/reporting"
)

type AdminHandler struct {
	auth      *auth.AuthHandler
	reporter  *reporting.Reporter
	reminders *reminders.Sender
	catalog   *catalog.Catalog
	exporter  *export.Exporter
	cfg       *config.Config
	logger    *slog.Logger
}

func NewAdminHandler(a *auth.AuthHandler, r *reporting.Reporter, s *reminders.Sender, c *catalog.Catalog, e *export.Exporter, cfg *config.Config, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{auth: a, reporter: r, reminders: s, catalog: c, exporter: e, cfg: cfg, logger: logger}
}

type PasswordBody struct {
	Password string `json:"password" required:"false"`
}

type AdminRequest struct {
	Body PasswordBody
}

type ReportResponse struct {
	Body *reporting.Report
}

func (h *AdminHandler) HandleRegistrations(ctx context.Context, input *AdminRequest) (*ReportResponse, error) {
	report, err := h.reporter.Build(ctx, input.Body.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthorized) {
			h.logger.ErrorContext(ctx, "fetch registrations", slog.Any("error", err))
		}
		return nil, apiError(err, "Failed to fetch registrations")
	}
	return &ReportResponse{Body: report}, nil
}

type RemindersRequest struct {
	Body struct {
		Password  string `json:"password" required:"false"`
		EventType string `json:"eventType" required:"false" doc:"Day label to remind, e.g. tuesday"`
	}
}

type RemindersResponse struct {
	Body struct {
		Success bool `json:"success"`
		reminders.Summary
	}
}

func (h *AdminHandler) HandleSendReminders(ctx context.Context, input *RemindersRequest) (*RemindersResponse, error) {
	summary, err := h.reminders.Send(ctx, input.Body.Password, models.DayLabel(input.Body.EventType))
	if err != nil {
		if _, ok := models.ReasonOf(err); !ok && !errors.Is(err, auth.ErrUnauthorized) {
			h.logger.ErrorContext(ctx, "send reminders", slog.Any("error", err))
		}
		return nil, apiError(err, "Failed to send reminder emails")
	}
	h.logger.InfoContext(ctx, "reminders processed",
		slog.String("day", input.Body.EventType),
		slog.Int("sent", summary.EmailsSent),
		slog.Int("failed", len(summary.Errors)),
	)
	res := &RemindersResponse{}
	res.Body.Success = true
	res.Body.Summary = *summary
	return res, nil
}

type SessionResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool `json:"success"`
	}
}

func (h *AdminHandler) HandleSession(ctx context.Context, input *AdminRequest) (*SessionResponse, error) {
	if err := h.auth.CheckPassword(input.Body.Password); err != nil {
		return nil, apiError(err, "")
	}
	token, err := h.auth.GenerateToken()
	if err != nil {
		h.logger.ErrorContext(ctx, "generate admin token", slog.Any("error", err))
		return nil, apiError(err, "Failed to start session")
	}
	res := &SessionResponse{SetCookie: *h.auth.SessionCookie(token)}
	res.Body.Success = true
	return res, nil
}

type ExportRequest struct {
	Event string `query:"event" default:"all" doc:"all or a day label"`
}

type PDFResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (h *AdminHandler) pdf(ctx context.Context, kind string, render func(*bytes.Buffer, *reporting.Report) error) (*PDFResponse, error) {
	report, err := h.reporter.Collect(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "export report", slog.Any("error", err))
		return nil, apiError(err, "Failed to build report")
	}
	var buf bytes.Buffer
	if err := render(&buf, report); err != nil {
		return nil, err
	}
	return &PDFResponse{
		ContentType:        "application/pdf",
		ContentDisposition: fmt.Sprintf(`attachment; filename="%s"`, h.exporter.Filename(kind)),
		Body:               buf.Bytes(),
	}, nil
}

func (h *AdminHandler) HandleExportParticipants(ctx context.Context, input *ExportRequest) (*PDFResponse, error) {
	event := input.Event
	if event == "" {
		event = export.All
	}
	if event != export.All && !h.catalog.Schedule().Known(models.DayLabel(event)) {
		return nil, huma.Error400BadRequest(fmt.Sprintf("Unknown event %q", event))
	}
	return h.pdf(ctx, "participants-"+event, func(buf *bytes.Buffer, r *reporting.Report) error {
		return h.exporter.Participants(buf, r, event)
	})
}

func (h *AdminHandler) HandleExportSummary(ctx context.Context, _ *struct{}) (*PDFResponse, error) {
	return h.pdf(ctx, "summary", func(buf *bytes.Buffer, r *reporting.Report) error {
		return h.exporter.Summary(buf, r)
	})
}

type SeedRequest struct {
	Body struct {
		Password string `json:"password" required:"false"`
		Force    bool   `json:"force,omitempty" required:"false" doc:"Reseed a populated production database"`
	}
}

type SeedResponse struct {
	Body struct {
		Success        bool   `json:"success"`
		Message        string `json:"message"`
		LocationsCount int    `json:"locationsCount"`
		EventsCount    int    `json:"eventsCount"`
	}
}

func (h *AdminHandler) HandleSeed(ctx context.Context, input *SeedRequest) (*SeedResponse, error) {
	if err := h.auth.CheckPassword(input.Body.Password); err != nil {
		return nil, apiError(err, "")
	}
	result, err := h.catalog.Seed(ctx, catalog.SeedOptions{
		Production:  h.cfg.IsProduction(),
		Force:       input.Body.Force,
		EventTime:   h.cfg.EventTime,
		Description: h.cfg.EventDescription,
	})
	if errors.Is(err, catalog.ErrSeedRefused) {
		return nil, &APIError{Status: http.StatusConflict, Message: "Database already seeded; pass force to reseed", Code: "seed_refused"}
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "seed events", slog.Any("error", err))
		return nil, apiError(err, "Failed to seed events")
	}
	res := &SeedResponse{}
	res.Body.Success = true
	res.Body.Message = "Events and locations seeded successfully"
	res.Body.LocationsCount = len(result.Locations)
	res.Body.EventsCount = len(result.Events)
	return res, nil
}
