package handlers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gdg-garage/crawl-registration-api/internal/admission"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/notifier"
)

type RegistrationHandler struct {
	controller *admission.Controller
	dispatcher *notifier.Dispatcher
	logger     *slog.Logger
	inflight   sync.WaitGroup
}

func NewRegistrationHandler(c *admission.Controller, d *notifier.Dispatcher, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{controller: c, dispatcher: d, logger: logger}
}

type RegistrationRequest struct {
	Body struct {
		Email                string `json:"email" required:"false" doc:"Registrant email; must be on the district domain"`
		FirstName            string `json:"firstName" required:"false"`
		LastName             string `json:"lastName" required:"false"`
		School               string `json:"school" required:"false"`
		Phone                string `json:"phone,omitempty" required:"false"`
		CrawlDate            string `json:"crawlDate" required:"false" doc:"Day label, e.g. tuesday"`
		CrawlLocation        string `json:"crawlLocation" required:"false" doc:"Location id"`
		CrawlLocationAddress string `json:"crawlLocationAddress,omitempty" required:"false"`
	}
}

type RegistrationResponse struct {
	Body struct {
		Success bool      `json:"success"`
		ID      models.ID `json:"id"`
		Message string    `json:"message"`
	}
}

func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegistrationRequest) (*RegistrationResponse, error) {
	in := input.Body
	adm, err := h.controller.Register(ctx, admission.Attempt{
		Email:                in.Email,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		School:               in.School,
		Phone:                in.Phone,
		CrawlDate:            models.DayLabel(in.CrawlDate),
		CrawlLocation:        in.CrawlLocation,
		CrawlLocationAddress: in.CrawlLocationAddress,
	})
	if err != nil {
		if _, ok := models.ReasonOf(err); !ok {
			h.logger.ErrorContext(ctx, "create registration", slog.Any("error", err))
		}
		return nil, apiError(err, "Failed to create registration")
	}

	h.logger.InfoContext(ctx, "registration created",
		slog.String("id", adm.ID.String()),
		slog.String("day", string(adm.Registration.CrawlDate)),
		slog.Int("remaining_spots", adm.RemainingSpots),
	)
	h.dispatch(ctx, adm.Effects)

	res := &RegistrationResponse{}
	res.Body.Success = true
	res.Body.ID = adm.ID
	res.Body.Message = admission.SuccessMessage
	return res, nil
}

// dispatch runs effects after the response is written. They outlive the
// request but not the server: Wait blocks until they are done.
func (h *RegistrationHandler) dispatch(ctx context.Context, effects []notifier.Effect) {
	if h.dispatcher == nil || len(effects) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.dispatcher.Run(bg, effects)
	}()
}

// Wait blocks until all dispatched effects have finished.
func (h *RegistrationHandler) Wait() {
	h.inflight.Wait()
}
