package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Jawher-Sadok/VondraLink/engine/activity"
	"github.com/Jawher-Sadok/VondraLink/engine/curator"
	"github.com/Jawher-Sadok/VondraLink/engine/domain"
)

// curatorService is the slice of *curator.Service the handlers use.
type curatorService interface {
	Search(ctx context.Context, req curator.SearchRequest) ([]domain.Product, error)
	Recommendations(ctx context.Context, profile domain.Profile, act domain.ActivityContext) ([]domain.Match, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchBody is the JSON body for POST /api/search.
type SearchBody struct {
	Query  string  `json:"query"`
	Mode   string  `json:"mode"`
	Image  string  `json:"image,omitempty"` // base64, image mode only
	Limit  int     `json:"limit"`
	UseMMR *bool   `json:"use_mmr,omitempty"`
	Lambda float64 `json:"lambda"`
	Budget float64 `json:"budget_limit"`
	UserID string  `json:"user_id,omitempty"`
}

func handleSearch(svc curatorService, recorder *activity.Recorder, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body SearchBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req := curator.SearchRequest{
			Query:  body.Query,
			Mode:   body.Mode,
			Limit:  body.Limit,
			UseMMR: true,
			Lambda: body.Lambda,
			Budget: body.Budget,
		}
		if body.UseMMR != nil {
			req.UseMMR = *body.UseMMR
		}
		if body.Image != "" {
			img, err := base64.StdEncoding.DecodeString(body.Image)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid image encoding")
				return
			}
			req.Image = img
		}

		results, err := svc.Search(r.Context(), req)
		if err != nil {
			if isValidation(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("search failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if body.UserID != "" && body.Query != "" {
			recorder.AddSearch(r.Context(), body.UserID, body.Query, req.Mode, body.Budget)
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// RecommendationsBody is the JSON body for POST /api/recommendations.
type RecommendationsBody struct {
	UserID  string         `json:"user_id,omitempty"`
	Profile domain.Profile `json:"user_profile"`
}

func handleRecommendations(svc curatorService, recorder *activity.Recorder, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body RecommendationsBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var act domain.ActivityContext
		if body.UserID != "" {
			act = recorder.Store().Context(body.UserID)
		}

		feed, err := svc.Recommendations(r.Context(), body.Profile, act)
		if err != nil {
			logger.Error("recommendations failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, feed)
	}
}

// ViewsBody is the JSON body for POST /api/activity/views.
type ViewsBody struct {
	UserID   string                 `json:"user_id"`
	Products []domain.ViewedProduct `json:"products"`
}

func handleViews(recorder *activity.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ViewsBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.UserID == "" {
			writeError(w, http.StatusBadRequest, domain.ErrMissingUser.Error())
			return
		}
		recorder.AddViews(r.Context(), body.UserID, body.Products)
		writeJSON(w, http.StatusOK, map[string]int{"recorded": len(body.Products)})
	}
}

func handleActivity(recorder *activity.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("user_id")
		if userID == "" {
			writeError(w, http.StatusBadRequest, domain.ErrMissingUser.Error())
			return
		}
		writeJSON(w, http.StatusOK, recorder.Store().Context(userID))
	}
}

func handleClear(recorder *activity.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("user_id")
		if userID == "" {
			writeError(w, http.StatusBadRequest, domain.ErrMissingUser.Error())
			return
		}
		recorder.Clear(r.Context(), userID)
		writeJSON(w, http.StatusOK, map[string]string{"cleared": userID})
	}
}

// isValidation reports whether err is one of the request validation
// sentinels.
func isValidation(err error) bool {
	return errors.Is(err, domain.ErrEmptyQuery) ||
		errors.Is(err, domain.ErrInvalidMode) ||
		errors.Is(err, domain.ErrInvalidLambda)
}
