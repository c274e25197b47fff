package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/adaptivelang/srs-backend/internal/service/placement"
)

// placementService defines the minimal interface needed by PlacementHandler.
type placementService interface {
	Start(ctx context.Context, input placement.StartInput) (*placement.StartResult, error)
	Answer(ctx context.Context, input placement.AnswerInput) (*placement.AnswerResult, error)
}

// PlacementHandler serves the placement REST endpoints.
type PlacementHandler struct {
	svc placementService
	log *slog.Logger
}

// NewPlacementHandler creates a PlacementHandler.
func NewPlacementHandler(svc placementService, logger *slog.Logger) *PlacementHandler {
	return &PlacementHandler{svc: svc, log: logger.With("handler", "placement")}
}

type startRequest struct {
	UserID       uuid.UUID `json:"user_id"`
	Language     string    `json:"language"`
	ClaimedLevel *string   `json:"claimed_level"`
}

type itemResponse struct {
	ID       uuid.UUID       `json:"id"`
	Language string          `json:"language"`
	Kind     string          `json:"kind"`
	Content  json.RawMessage `json:"content"`
}

type startResponse struct {
	SessionID uuid.UUID    `json:"session_id"`
	Theta     float64      `json:"theta"`
	ThetaSE   float64      `json:"theta_se"`
	Item      itemResponse `json:"item"`
}

type answerRequest struct {
	SessionID      uuid.UUID `json:"session_id"`
	ItemID         uuid.UUID `json:"item_id"`
	Answer         string    `json:"answer"`
	ResponseTimeMs *int      `json:"response_time_ms"`
}

type answerResponse struct {
	SessionID      uuid.UUID        `json:"session_id"`
	IsCorrect      bool             `json:"is_correct"`
	Theta          float64          `json:"theta"`
	ThetaSE        float64          `json:"theta_se"`
	ItemsCompleted int              `json:"items_completed"`
	Complete       bool             `json:"complete"`
	NextItem       *itemResponse    `json:"next_item,omitempty"`
	Result         *resultResponse  `json:"result,omitempty"`
}

type resultResponse struct {
	CEFRLevel      string  `json:"cefr_level"`
	FinalTheta     float64 `json:"final_theta"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
	ItemsCompleted int     `json:"items_completed"`
	LowConfidence  bool    `json:"low_confidence"`
}

// Start handles POST /v1/placement/start.
func (h *PlacementHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var claimed *domain.CEFRLevel
	if req.ClaimedLevel != nil {
		l := domain.CEFRLevel(*req.ClaimedLevel)
		claimed = &l
	}

	res, err := h.svc.Start(r.Context(), placement.StartInput{
		UserID:       req.UserID,
		Language:     req.Language,
		ClaimedLevel: claimed,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	item, err := toItemResponse(res.Item)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{
		SessionID: res.Session.ID,
		Theta:     res.Session.Theta,
		ThetaSE:   res.Session.ThetaSE,
		Item:      item,
	})
}

// Answer handles POST /v1/placement/answer.
func (h *PlacementHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Answer(r.Context(), placement.AnswerInput{
		SessionID:      req.SessionID,
		ItemID:         req.ItemID,
		Answer:         req.Answer,
		ResponseTimeMs: req.ResponseTimeMs,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := answerResponse{
		SessionID:      res.Session.ID,
		IsCorrect:      res.IsCorrect,
		Theta:          res.Session.Theta,
		ThetaSE:        res.Session.ThetaSE,
		ItemsCompleted: res.Session.ItemsCompleted,
		Complete:       res.Session.IsComplete(),
	}
	if res.NextItem != nil {
		item, convErr := toItemResponse(*res.NextItem)
		if convErr != nil {
			handleError(w, r, h.log, convErr)
			return
		}
		resp.NextItem = &item
	}
	if res.Result != nil {
		resp.Result = &resultResponse{
			CEFRLevel:      res.Result.Level.String(),
			FinalTheta:     res.Result.Theta,
			ConfidenceLow:  res.Result.ConfidenceLow,
			ConfidenceHigh: res.Result.ConfidenceHigh,
			ItemsCompleted: res.Result.ItemsCompleted,
			LowConfidence:  res.Result.LowConfidence,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// toItemResponse serializes an item for the wire, content as stored in
// the catalog.
func toItemResponse(item domain.Item) (itemResponse, error) {
	content, err := domain.MarshalContent(item.Content)
	if err != nil {
		return itemResponse{}, err
	}
	return itemResponse{
		ID:       item.ID,
		Language: item.Language,
		Kind:     item.Kind.String(),
		Content:  content,
	}, nil
}
