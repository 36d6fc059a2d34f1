package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/aura/internal/observability"
	"github.com/kalambet/aura/internal/profile"
	"github.com/kalambet/aura/internal/router"
	"github.com/kalambet/aura/internal/session"
)

// chatResponseType tags every chat reply.
const chatResponseType = "general_pcod_chat"

// Assistant answers the user-facing intents. Implemented by router.Service.
type Assistant interface {
	AssessSymptoms(ctx context.Context, name string, flags profile.SymptomFlags) (string, error)
	LogPeriod(ctx context.Context, name string, entry profile.PeriodLog) (string, error)
	LifestyleTips(ctx context.Context, name string, prefs profile.Lifestyle) (string, error)
	Understanding(ctx context.Context, name string) (string, error)
	ExpertConnect(ctx context.Context, name string) (string, error)
	Chat(ctx context.Context, name, message string) (router.Reply, error)
	Profile(name string) profile.Profile
}

type Deps struct {
	Assistant Assistant
	Sessions  *session.Manager
	Metrics   *observability.Metrics // optional
}

type replyResponse struct {
	Response string `json:"response"`
}

type chatResponse struct {
	Response string `json:"response"`
	Type     string `json:"type"`
	Intent   string `json:"intent"`
	UserName string `json:"user_name"`
}

// NewHandler returns the HTTP API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger)
	r.Use(deps.Metrics.Middleware)

	r.Get("/health", handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.Sessions.Middleware)

		r.Post("/chat", handleChat(deps))
		r.Post("/assess_symptoms", handleAssessSymptoms(deps))
		r.Post("/log_period", handleLogPeriod(deps))
		r.Post("/get_lifestyle_tips", handleLifestyleTips(deps))
		r.Post("/understanding_pcos", handleUnderstanding(deps))
		r.Post("/expert_connect", handleExpertConnect(deps))
		r.Get("/user-profile", handleUserProfile(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		name := deps.Sessions.Identify(r.Context(), req.UserName)

		reply, err := deps.Assistant.Chat(r.Context(), name, req.Message)
		if err != nil {
			completionError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{
			Response: reply.Text,
			Type:     chatResponseType,
			Intent:   string(reply.Intent),
			UserName: name,
		})
	}
}

func handleAssessSymptoms(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req symptomsRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		name := deps.Sessions.Identify(r.Context(), req.UserName)
		reply(w, r, func(ctx context.Context) (string, error) {
			return deps.Assistant.AssessSymptoms(ctx, name, req.flags())
		})
	}
}

func handleLogPeriod(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req periodRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		name := deps.Sessions.Identify(r.Context(), req.UserName)
		reply(w, r, func(ctx context.Context) (string, error) {
			return deps.Assistant.LogPeriod(ctx, name, req.entry())
		})
	}
}

func handleLifestyleTips(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lifestyleRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		name := deps.Sessions.Identify(r.Context(), req.UserName)
		reply(w, r, func(ctx context.Context) (string, error) {
			return deps.Assistant.LifestyleTips(ctx, name, profile.Lifestyle{
				DietHabits:        req.DietHabits,
				ExerciseFrequency: req.ExerciseFrequency,
			})
		})
	}
}

func handleUnderstanding(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRequest
		if !decodeRequest(w, r, &req, true) {
			return
		}
		name := deps.Sessions.Identify(r.Context(), req.UserName)
		reply(w, r, func(ctx context.Context) (string, error) {
			return deps.Assistant.Understanding(ctx, name)
		})
	}
}

func handleExpertConnect(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRequest
		if !decodeRequest(w, r, &req, true) {
			return
		}
		name := deps.Sessions.Identify(r.Context(), req.UserName)
		reply(w, r, func(ctx context.Context) (string, error) {
			return deps.Assistant.ExpertConnect(ctx, name)
		})
	}
}

// handleUserProfile returns the caller's profile. A user_name query
// parameter takes precedence over the session.
func handleUserProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := deps.Sessions.Identify(r.Context(), r.URL.Query().Get("user_name"))
		writeJSON(w, http.StatusOK, deps.Assistant.Profile(name))
	}
}

func reply(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (string, error)) {
	text, err := fn(r.Context())
	if err != nil {
		completionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, replyResponse{Response: text})
}
