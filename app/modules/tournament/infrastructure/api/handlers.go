package tournamentapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	tournamentservice "github.com/axi1912/Easy-Customs/app/modules/tournament/application"
	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/observability"
)

// Handlers serves the read-only tournament HTTP API.
type Handlers struct {
	service tournamentservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	palette tournamentservice.ChartPalette
}

func NewHandlers(service tournamentservice.Service, logger *slog.Logger, tracer trace.Tracer) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		palette: tournamentservice.DefaultChartPalette,
	}
}

// Register mounts the tournament routes under /api/tournament.
func Register(httpRouter chi.Router, h *Handlers, limiter *IPRateLimiter) {
	httpRouter.Route("/api/tournament", func(r chi.Router) {
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter))
		}
		r.Get("/", h.HandleGetStatus)
		r.Get("/standings", h.HandleGetStandings)
		r.Get("/standings.png", h.HandleGetStandingsChart)
		r.Get("/teams/by-channel/{channelID}", h.HandleGetTeamByChannel)
	})
}

func (h *Handlers) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TournamentAPI.GetStatus")
	defer span.End()

	res, err := h.service.GetStatus(ctx)
	if err != nil {
		h.internalError(ctx, w, "GetStatus", err)
		return
	}
	if res.IsFailure() {
		h.writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

func (h *Handlers) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TournamentAPI.GetStandings")
	defer span.End()

	res, err := h.service.GetStandings(ctx)
	if err != nil {
		h.internalError(ctx, w, "GetStandings", err)
		return
	}
	if res.IsFailure() {
		h.writeFailure(w, *res.Failure)
		return
	}
	standings := *res.Success
	if standings == nil {
		standings = []tournamentdomain.TeamStanding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"standings": standings})
}

func (h *Handlers) HandleGetStandingsChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TournamentAPI.GetStandingsChart")
	defer span.End()

	res, err := h.service.GetStandings(ctx)
	if err != nil {
		h.internalError(ctx, w, "GetStandingsChart", err)
		return
	}
	if res.IsFailure() {
		h.writeFailure(w, *res.Failure)
		return
	}

	png, err := tournamentservice.RenderStandingsChart(*res.Success, h.palette)
	if err != nil {
		h.internalError(ctx, w, "GetStandingsChart", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handlers) HandleGetTeamByChannel(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	ctx, span := h.tracer.Start(r.Context(), "TournamentAPI.GetTeamByChannel",
		trace.WithAttributes(attribute.String("channel_id", channelID)))
	defer span.End()

	res, err := h.service.FindTeamByChannel(ctx, channelID)
	if err != nil {
		h.internalError(ctx, w, "GetTeamByChannel", err)
		return
	}
	if res.IsFailure() {
		h.writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

func (h *Handlers) internalError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.ErrorContext(ctx, "HTTP request failed",
		slog.String("operation", op),
		observability.ErrorAttr(err),
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handlers) writeFailure(w http.ResponseWriter, f *tournamentevents.FailurePayloadV1) {
	writeJSON(w, statusForKind(f.Kind), f)
}

func statusForKind(kind tournamentdomain.Kind) int {
	switch kind {
	case tournamentdomain.KindNoActiveTournament, tournamentdomain.KindTeamNotFound:
		return http.StatusNotFound
	case tournamentdomain.KindExternalCollaboratorFailure:
		return http.StatusBadGateway
	default:
		return http.StatusConflict
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
