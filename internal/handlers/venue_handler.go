package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/rankengine-api/internal/domain/venue"
	"github.com/gravadigital/rankengine-api/internal/logger"
	"github.com/gravadigital/rankengine-api/internal/middleware/auth"
	"github.com/gravadigital/rankengine-api/internal/response"
	"github.com/gravadigital/rankengine-api/internal/storage/postgres"
	"github.com/gravadigital/rankengine-api/internal/validation"
)

var venueValidation = validation.VenueValidation{}

// VenueHandler manages venues: the scope within which submissions are
// ranked and reviewers build reputation.
type VenueHandler struct {
	venueRepo postgres.VenueRepository
	log       *log.Logger
}

func NewVenueHandler(venueRepo postgres.VenueRepository) *VenueHandler {
	return &VenueHandler{
		venueRepo: venueRepo,
		log:       logger.Handler("venue_handler"),
	}
}

type createVenueRequest struct {
	Name                           string    `json:"name" binding:"required"`
	Description                    string    `json:"description" binding:"required"`
	StartDate                      time.Time `json:"start_date" binding:"required"`
	EndDate                        time.Time `json:"end_date" binding:"required"`
	NumberOfSubmissionsPerReviewer *int      `json:"number_of_submissions_per_reviewer"`
	CanRankOwnSubmissions          bool      `json:"can_rank_own_submissions"`
	RankCostCoefficient            float64   `json:"rank_cost_coefficient"`
}

// CreateVenue creates a new venue authored by the caller.
func (h *VenueHandler) CreateVenue(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		response.UnauthorizedError(c, "missing identity")
		return
	}

	var req createVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body")
		return
	}

	if err := venueValidation.ValidateVenueName(req.Name); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := venueValidation.ValidateVenueDescription(req.Description); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := validation.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	v := venue.NewVenue(req.Name, req.Description, userID, req.StartDate, req.EndDate)
	v.NumberOfSubmissionsPerReviewer = req.NumberOfSubmissionsPerReviewer
	v.CanRankOwnSubmissions = req.CanRankOwnSubmissions
	v.RankCostCoefficient = req.RankCostCoefficient

	if err := h.venueRepo.Create(v); err != nil {
		h.log.Error("failed to create venue", "error", err)
		response.InternalServerError(c, "failed to create venue")
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "venue created", v)
}

// GetAllVenues lists every venue.
func (h *VenueHandler) GetAllVenues(c *gin.Context) {
	venues, err := h.venueRepo.GetAll()
	if err != nil {
		h.log.Error("failed to list venues", "error", err)
		response.InternalServerError(c, "failed to list venues")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "venues retrieved", venues)
}

// GetVenue retrieves a single venue by id.
func (h *VenueHandler) GetVenue(c *gin.Context) {
	v, err := h.venueRepo.GetByID(c.Param("id"))
	if err != nil {
		response.NotFoundError(c, "venue not found")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "venue retrieved", v)
}

type updateStageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// UpdateStage transitions a venue through creation -> registration ->
// submission -> review -> results, enforcing the venue's own state machine.
func (h *VenueHandler) UpdateStage(c *gin.Context) {
	var req updateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body")
		return
	}

	stage, ok := venue.StageFromString(req.Stage)
	if !ok {
		response.BadRequestError(c, "unknown stage")
		return
	}

	if err := h.venueRepo.UpdateStage(c.Param("id"), stage); err != nil {
		h.log.Error("failed to update venue stage", "venue_id", c.Param("id"), "error", err)
		response.BadRequestError(c, err.Error())
		return
	}

	response.SuccessResponse(c, http.StatusOK, "venue stage updated", nil)
}
