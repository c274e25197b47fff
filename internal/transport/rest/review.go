package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/adaptivelang/srs-backend/internal/service/review"
)

// reviewService defines the minimal interface needed by ReviewHandler.
type reviewService interface {
	LogEncounter(ctx context.Context, input review.LogEncounterInput) (*domain.Encounter, error)
	Grade(ctx context.Context, input review.GradeInput) (domain.ReviewState, error)
	ListDue(ctx context.Context, input review.ListDueInput) ([]domain.ReviewState, error)
	Stats(ctx context.Context, userID uuid.UUID) (domain.ReviewStats, error)
}

// ReviewHandler serves the review REST endpoints.
type ReviewHandler struct {
	svc reviewService
	log *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc reviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: logger.With("handler", "review")}
}

type encounterRequest struct {
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Signals   []string  `json:"signals"`
	RawText   string    `json:"raw_text"`
	LatencyMs *int      `json:"latency_ms"`
	HintsUsed *int      `json:"hints_used"`
}

type encounterResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

type gradeRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	ItemID     uuid.UUID `json:"item_id"`
	Grade      int       `json:"grade"`
	DurationMs *int      `json:"duration_ms"`
}

type reviewStateResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	ItemID       uuid.UUID `json:"item_id"`
	State        string    `json:"state"`
	EaseFactor   float64   `json:"ease_factor"`
	IntervalDays int       `json:"interval_days"`
	Repetitions  int       `json:"repetitions"`
	Stability    float64   `json:"stability,omitempty"`
	Difficulty   float64   `json:"difficulty,omitempty"`
	DueAt        time.Time `json:"due_at"`
	LastGrade    *int      `json:"last_grade,omitempty"`
}

type dueResponse struct {
	Items []reviewStateResponse `json:"items"`
	Count int                   `json:"count"`
}

type statsResponse struct {
	TotalReviews  int            `json:"total_reviews"`
	Grades        map[string]int `json:"grades"`
	AccuracyRate  float64        `json:"accuracy_rate"`
	ActiveDays    int            `json:"active_days"`
	AvgDurationMs *int           `json:"avg_duration_ms,omitempty"`
}

// LogEncounter handles POST /v1/encounters.
func (h *ReviewHandler) LogEncounter(w http.ResponseWriter, r *http.Request) {
	var req encounterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	enc, err := h.svc.LogEncounter(r.Context(), review.LogEncounterInput{
		UserID:    req.UserID,
		ItemID:    req.ItemID,
		Signals:   req.Signals,
		RawText:   req.RawText,
		LatencyMs: req.LatencyMs,
		HintsUsed: req.HintsUsed,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, encounterResponse{
		ID:        enc.ID,
		UserID:    enc.UserID,
		ItemID:    enc.ItemID,
		CreatedAt: enc.CreatedAt,
	})
}

// Grade handles POST /v1/reviews/grade.
func (h *ReviewHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.svc.Grade(r.Context(), review.GradeInput{
		UserID:     req.UserID,
		ItemID:     req.ItemID,
		Grade:      domain.ReviewGrade(req.Grade),
		DurationMs: req.DurationMs,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toStateResponse(state))
}

// ListDue handles GET /v1/reviews/due.
func (h *ReviewHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a uuid")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}

	states, err := h.svc.ListDue(r.Context(), review.ListDueInput{UserID: userID, Limit: limit})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	items := make([]reviewStateResponse, 0, len(states))
	for _, s := range states {
		items = append(items, toStateResponse(s))
	}
	writeJSON(w, http.StatusOK, dueResponse{Items: items, Count: len(items)})
}

// Stats handles GET /v1/stats/{user_id}.
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a uuid")
		return
	}

	stats, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalReviews: stats.TotalReviews,
		Grades: map[string]int{
			"again": stats.GradeCounts.Again,
			"hard":  stats.GradeCounts.Hard,
			"good":  stats.GradeCounts.Good,
			"easy":  stats.GradeCounts.Easy,
		},
		AccuracyRate:  stats.AccuracyRate,
		ActiveDays:    stats.ActiveDays,
		AvgDurationMs: stats.AvgDurationMs,
	})
}

func toStateResponse(s domain.ReviewState) reviewStateResponse {
	var lastGrade *int
	if s.LastGrade != nil {
		v := int(*s.LastGrade)
		lastGrade = &v
	}
	return reviewStateResponse{
		UserID:       s.UserID,
		ItemID:       s.ItemID,
		State:        s.State.String(),
		EaseFactor:   s.EaseFactor,
		IntervalDays: s.IntervalDays,
		Repetitions:  s.Repetitions,
		Stability:    s.Stability,
		Difficulty:   s.Difficulty,
		DueAt:        s.Due,
		LastGrade:    lastGrade,
	}
}
