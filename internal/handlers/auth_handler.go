package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "studymate/internal/errors"
	"studymate/internal/metrics"
	"studymate/internal/models"
	"studymate/internal/services"
)

// TokenIssuer mints session tokens for authenticated students.
type TokenIssuer interface {
	Issue(studentID uint) (string, time.Time, error)
}

// AuthHandler serves /auth, dispatching on the action query parameter.
type AuthHandler struct {
	students services.StudentServicer
	tokens   TokenIssuer
	audit    services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(students services.StudentServicer, tokens TokenIssuer, audit services.AuditServicer) *AuthHandler {
	return &AuthHandler{students: students, tokens: tokens, audit: audit}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,max=150"`
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is either a theme change (theme_preference set) or a
// full profile update.
type UpdateProfileRequest struct {
	ThemePreference *string `json:"theme_preference" binding:"omitempty,theme"`
	FullName        string  `json:"full_name" binding:"max=150"`
	Username        string  `json:"username" binding:"omitempty,username"`
	Email           string  `json:"email" binding:"omitempty,email,max=255"`
	Bio             string  `json:"bio"`
	ProfilePicture  *string `json:"profile_picture"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string          `json:"message"`
	Student *models.Student `json:"student"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Message   string          `json:"message"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Student   *models.Student `json:"student"`
}

// ThemeResponse acknowledges a theme change.
type ThemeResponse struct {
	Message         string       `json:"message"`
	ThemePreference models.Theme `json:"theme_preference"`
}

// Post handles the public register and login actions.
// @Summary     Register or log in
// @Description action=register creates an account; action=login returns a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       action  query string          true "register or login"
// @Param       request body  RegisterRequest true "Registration data (action=register)"
// @Success     201 {object} RegisterResponse "Account created"
// @Success     200 {object} LoginResponse "Token issued"
// @Failure     400 {object} ErrorResponse "Invalid input or unknown action"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     409 {object} ErrorResponse "Username or email already in use"
// @Failure     429 {object} ErrorResponse "Too many login attempts"
// @Router      /auth [post]
func (h *AuthHandler) Post(c *gin.Context) {
	switch c.Query("action") {
	case "register":
		h.register(c)
	case "login":
		h.login(c)
	case "profile":
		respondWithError(c, apperrors.ErrMethodNotAllowed)
	default:
		respondWithError(c, apperrors.ErrUnknownAction)
	}
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		respondWithError(c, invalidInput(err))
		return
	}

	student, err := h.students.Register(req.FullName, req.Username, req.Email, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "rejected").Inc()
		respondWithError(c, err)
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	h.audit.Log(student.ID, services.ActionCreate, "student", student.ID, c.ClientIP(), nil)
	c.JSON(http.StatusCreated, RegisterResponse{Message: "Registration successful", Student: student})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		respondWithError(c, invalidInput(err))
		return
	}

	student, err := h.students.Authenticate(req.Username, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "rejected").Inc()
		respondWithError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(student.ID)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	c.JSON(http.StatusOK, LoginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiresAt,
		Student:   student,
	})
}

// Get returns the caller's profile.
// @Summary     Get profile
// @Description Get the authenticated student's profile
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Param       action query string true "profile"
// @Success     200 {object} models.Student "Profile"
// @Failure     400 {object} ErrorResponse "Unknown action"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /auth [get]
func (h *AuthHandler) Get(c *gin.Context) {
	if c.Query("action") != "profile" {
		respondWithError(c, apperrors.ErrUnknownAction)
		return
	}

	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	student, err := h.students.GetProfile(studentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// Put updates the theme or the profile of the caller.
// @Summary     Update profile or theme
// @Description A body with theme_preference only changes the theme; otherwise full_name, username and email are required
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       action  query string               true "profile"
// @Param       request body  UpdateProfileRequest true "Profile or theme"
// @Success     200 {object} models.Student "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Username or email already in use"
// @Router      /auth [put]
func (h *AuthHandler) Put(c *gin.Context) {
	if c.Query("action") != "profile" {
		respondWithError(c, apperrors.ErrUnknownAction)
		return
	}

	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if req.ThemePreference != nil {
		theme := models.Theme(*req.ThemePreference)
		if err := h.students.UpdateTheme(studentID, theme); err != nil {
			respondWithError(c, err)
			return
		}
		h.audit.Log(studentID, services.ActionUpdate, "theme", studentID, c.ClientIP(),
			map[string]interface{}{"theme_preference": theme})
		c.JSON(http.StatusOK, ThemeResponse{Message: "Theme updated", ThemePreference: theme})
		return
	}

	student, err := h.students.UpdateProfile(studentID, services.ProfileUpdate{
		FullName:       req.FullName,
		Username:       req.Username,
		Email:          req.Email,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(studentID, services.ActionUpdate, "student", studentID, c.ClientIP(),
		map[string]interface{}{"username": student.Username, "email": student.Email})
	c.JSON(http.StatusOK, student)
}
