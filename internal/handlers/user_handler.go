package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/rankengine-api/internal/config"
	"github.com/gravadigital/rankengine-api/internal/domain/reviewer"
	"github.com/gravadigital/rankengine-api/internal/logger"
	"github.com/gravadigital/rankengine-api/internal/middleware/auth"
	"github.com/gravadigital/rankengine-api/internal/response"
	"github.com/gravadigital/rankengine-api/internal/storage/postgres"
	"github.com/gravadigital/rankengine-api/internal/validation"
)

var userValidation = validation.UserValidation{}

// UserHandler manages reviewer/admin accounts and session issuance.
type UserHandler struct {
	userRepo postgres.UserRepository
	config   *config.Config
	log      *log.Logger
}

func NewUserHandler(userRepo postgres.UserRepository, cfg *config.Config) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		config:   cfg,
		log:      logger.Handler("user_handler"),
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	LastName string `json:"lastname"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token string        `json:"token"`
	User  *reviewer.User `json:"user"`
}

// Register creates a new reviewer account and issues a session token.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body")
		return
	}

	if err := userValidation.ValidateUserName(req.Name); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := userValidation.ValidateUserEmail(req.Email); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := userValidation.ValidateUserPassword(req.Password); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	// Public registration only ever creates reviewers; admin accounts are
	// seeded out of band (internal/storage/migrations) to keep venue
	// reputation/grading operations from being self-granted.
	user, err := reviewer.NewReviewer(req.Name, req.LastName, req.Email, req.Password)
	if err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	if err := h.userRepo.Create(user); err != nil {
		h.log.Error("failed to create user", "error", err)
		response.InternalServerError(c, "failed to create user")
		return
	}

	token, err := auth.IssueToken(h.config.Auth.JWTSecret, user, time.Duration(h.config.Auth.JWTTTLHours)*time.Hour)
	if err != nil {
		h.log.Error("failed to issue token", "error", err)
		response.InternalServerError(c, "failed to issue session token")
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "user registered", sessionResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a session token.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body")
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		response.UnauthorizedError(c, "invalid credentials")
		return
	}

	if !user.CheckPassword(req.Password) {
		response.UnauthorizedError(c, "invalid credentials")
		return
	}

	token, err := auth.IssueToken(h.config.Auth.JWTSecret, user, time.Duration(h.config.Auth.JWTTTLHours)*time.Hour)
	if err != nil {
		h.log.Error("failed to issue token", "error", err)
		response.InternalServerError(c, "failed to issue session token")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "login successful", sessionResponse{Token: token, User: user})
}

// GetAllUsers lists every registered user.
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userRepo.GetAll()
	if err != nil {
		h.log.Error("failed to list users", "error", err)
		response.InternalServerError(c, "failed to list users")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "users retrieved", users)
}

// GetUser retrieves a single user by id.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userRepo.GetByID(c.Param("id"))
	if err != nil {
		response.NotFoundError(c, "user not found")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "user retrieved", user)
}
