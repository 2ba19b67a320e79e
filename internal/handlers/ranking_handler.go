package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/rankengine-api/internal/config"
	"github.com/gravadigital/rankengine-api/internal/domain/ranking"
	"github.com/gravadigital/rankengine-api/internal/logger"
	"github.com/gravadigital/rankengine-api/internal/metrics"
	"github.com/gravadigital/rankengine-api/internal/middleware/auth"
	"github.com/gravadigital/rankengine-api/internal/response"
	"github.com/gravadigital/rankengine-api/internal/storage/postgres"
)

// RankingHandler exposes the engine's six entry points as HTTP routes,
// scoped to a venue and backed by a fresh transaction per request.
type RankingHandler struct {
	container *postgres.Container
	venueRepo postgres.VenueRepository
	config    *config.Config
	log       *log.Logger
}

func NewRankingHandler(container *postgres.Container, venueRepo postgres.VenueRepository, cfg *config.Config) *RankingHandler {
	return &RankingHandler{
		container: container,
		venueRepo: venueRepo,
		config:    cfg,
		log:       logger.Handler("ranking_handler"),
	}
}

type nextTaskRequest struct {
	OldItems []string `json:"old_items"`
}

type nextTaskResponse struct {
	ItemID string `json:"item_id"`
}

// NextTask offers the next comparison item to the authenticated reviewer.
func (h *RankingHandler) NextTask(c *gin.Context) {
	venueID := c.Param("id")

	userID, ok := auth.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "missing reviewer identity")
		return
	}

	var req nextTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequestError(c, "invalid request body")
		return
	}

	v, err := h.venueRepo.GetByID(venueID)
	if err != nil {
		response.NotFoundError(c, "venue not found")
		return
	}
	costCoefficient := v.RankCostCoefficient

	var itemID string
	err = h.container.WithRankingEngine(c.Request.Context(), func(engine *ranking.Engine, port *postgres.RankingDataPort) error {
		id, err := engine.NextTask(c.Request.Context(), venueID, userID.String(), req.OldItems, v.CanRankOwnSubmissions, costCoefficient)
		if err != nil {
			return err
		}
		itemID = id
		if id != "" {
			if err := port.RecordTaskOffer(c.Request.Context(), venueID, id, userID.String()); err != nil {
				return err
			}
			metrics.RecordTaskIssued(venueID)
		} else {
			metrics.RecordTaskExhausted(venueID)
		}
		return port.Commit(c.Request.Context())
	})
	if err != nil {
		h.log.Error("next task failed", "venue_id", venueID, "error", err)
		response.InternalServerError(c, "failed to compute next task")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "next task computed", nextTaskResponse{ItemID: itemID})
}

type recordComparisonRequest struct {
	Ordering []string `json:"ordering" binding:"required,min=1"`
	NewItem  string   `json:"new_item" binding:"required"`
	Alpha    *float64 `json:"alpha"`
}

// RecordComparison folds a reviewer-submitted ordering into the venue's beliefs.
func (h *RankingHandler) RecordComparison(c *gin.Context) {
	venueID := c.Param("id")

	userID, ok := auth.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "missing reviewer identity")
		return
	}

	var req recordComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body")
		return
	}

	alpha := h.config.Ranking.AnnealingSingle
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	// req.Ordering arrives highest-first, the UI convention also used by
	// CreateComparison's stored record; the engine wants lowest-to-highest.
	lowToHigh := reverseOrdering(req.Ordering)

	start := time.Now()
	err := h.container.WithRankingEngine(c.Request.Context(), func(engine *ranking.Engine, port *postgres.RankingDataPort) error {
		if len(req.Ordering) >= 2 {
			if err := port.CreateComparison(c.Request.Context(), venueID, userID.String(), req.Ordering, req.NewItem, true); err != nil {
				return err
			}
		}
		return engine.RecordComparison(c.Request.Context(), venueID, userID.String(), lowToHigh, req.NewItem, alpha)
	})
	metrics.RecordComparisonProcessed(venueID, time.Since(start))
	if err != nil {
		h.log.Error("record comparison failed", "venue_id", venueID, "error", err)
		response.InternalServerError(c, "failed to record comparison")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "comparison recorded", nil)
}

// ScoreReviewers re-evaluates every reviewer's accuracy for the venue.
func (h *RankingHandler) ScoreReviewers(c *gin.Context) {
	venueID := c.Param("id")

	err := h.container.WithRankingEngine(c.Request.Context(), func(engine *ranking.Engine, port *postgres.RankingDataPort) error {
		return engine.ScoreReviewers(c.Request.Context(), venueID)
	})
	if err != nil {
		h.log.Error("score reviewers failed", "venue_id", venueID, "error", err)
		response.InternalServerError(c, "failed to score reviewers")
		return
	}
	metrics.ReviewerAccuracyScored.WithLabelValues(venueID).Inc()

	response.SuccessResponse(c, http.StatusOK, "reviewers scored", nil)
}

// ComputeGrades runs the reputation-free final grading pass.
func (h *RankingHandler) ComputeGrades(c *gin.Context) {
	venueID := c.Param("id")

	err := h.container.WithRankingEngine(c.Request.Context(), func(engine *ranking.Engine, port *postgres.RankingDataPort) error {
		return engine.ComputeGrades(c.Request.Context(), venueID)
	})
	if err != nil {
		h.log.Error("compute grades failed", "venue_id", venueID, "error", err)
		response.InternalServerError(c, "failed to compute grades")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "grades computed", nil)
}

type runReputationRequest struct {
	Alpha      *float64 `json:"alpha"`
	Iterations *int     `json:"iterations"`
	LastK      *int     `json:"last_k"`
}

// RunReputation runs the fixed-point reputation loop, admin only.
func (h *RankingHandler) RunReputation(c *gin.Context) {
	venueID := c.Param("id")

	var req runReputationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequestError(c, "invalid request body")
		return
	}

	alpha := h.config.Ranking.DefaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	iterations := h.config.Ranking.DefaultIterations
	if req.Iterations != nil {
		iterations = *req.Iterations
	}

	mode := "windowed"
	if req.LastK == nil {
		mode = "chronological-all"
	}
	start := time.Now()
	err := h.container.WithRankingEngine(c.Request.Context(), func(engine *ranking.Engine, port *postgres.RankingDataPort) error {
		return engine.RunReputation(c.Request.Context(), venueID, alpha, iterations, req.LastK)
	})
	metrics.RecordReputationRun(venueID, mode, time.Since(start), err)
	if err != nil {
		h.log.Error("run reputation failed", "venue_id", venueID, "error", err)
		response.InternalServerError(c, "failed to run reputation")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "reputation system run", nil)
}

type reprocessRequest struct {
	Alpha *float64 `json:"alpha"`
	Twice bool     `json:"twice"`
}

// Reprocess replays the venue's full comparison history from scratch, admin only.
func (h *RankingHandler) Reprocess(c *gin.Context) {
	venueID := c.Param("id")

	var req reprocessRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequestError(c, "invalid request body")
		return
	}

	alpha := h.config.Ranking.DefaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	mode := "reprocess"
	if req.Twice {
		mode = "reprocess-twice"
	}
	start := time.Now()
	err := h.container.WithRankingEngine(c.Request.Context(), func(engine *ranking.Engine, port *postgres.RankingDataPort) error {
		return engine.Reprocess(c.Request.Context(), venueID, alpha, req.Twice)
	})
	metrics.RecordReputationRun(venueID, mode, time.Since(start), err)
	if err != nil {
		h.log.Error("reprocess failed", "venue_id", venueID, "error", err)
		response.InternalServerError(c, "failed to reprocess venue")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "venue reprocessed", nil)
}

// reverseOrdering returns a new slice with ordering reversed, leaving the
// input untouched.
func reverseOrdering(ordering []string) []string {
	reversed := make([]string, len(ordering))
	for i, id := range ordering {
		reversed[len(ordering)-1-i] = id
	}
	return reversed
}

