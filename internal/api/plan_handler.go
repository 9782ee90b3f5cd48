package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"alcyxob/run-plan/internal/domain"
	"alcyxob/run-plan/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// PlanHandler exposes the plan service over HTTP.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request/Response Structs ---

type PlanResponse struct {
	Plan        *domain.Plan `json:"plan"`
	CurrentWeek int          `json:"current_week"`
}

type LogSessionRequest struct {
	Done *bool    `json:"done" binding:"required"`
	Km   *float64 `json:"km"` // Optional; keeps the logged distance when omitted
}

// --- Handler Methods ---

// GetPlan godoc
// @Summary Get the whole plan and the current calendar week
// @Tags Plan
// @Produce json
// @Success 200 {object} PlanResponse
// @Security BearerAuth
// @Router /plan [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	ctx := c.Request.Context()
	plan, err := h.planService.Plan(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	current, err := h.planService.CurrentWeek(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, PlanResponse{Plan: plan, CurrentWeek: current})
}

// ImportPlan godoc
// @Summary Replace the plan with an imported document
// @Tags Plan
// @Accept json
// @Produce json
// @Param plan body domain.Plan true "Plan document"
// @Success 200 {object} domain.Plan
// @Failure 400 {object} gin.H "Invalid plan"
// @Security BearerAuth
// @Router /plan [put]
func (h *PlanHandler) ImportPlan(c *gin.Context) {
	var plan domain.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid plan document: %v", err))
		return
	}
	imported, err := h.planService.ImportPlan(c.Request.Context(), &plan)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, imported)
}

// GetProgression returns the target versus realized series for every week.
func (h *PlanHandler) GetProgression(c *gin.Context) {
	points, err := h.planService.Progression(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetAchievements returns the streak and earned badges.
func (h *PlanHandler) GetAchievements(c *gin.Context) {
	a, err := h.planService.Achievements(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *PlanHandler) GetWeek(c *gin.Context) {
	number, ok := weekNumberParam(c)
	if !ok {
		return
	}
	w, err := h.planService.Week(c.Request.Context(), number)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *PlanHandler) GetWeekSummary(c *gin.Context) {
	number, ok := weekNumberParam(c)
	if !ok {
		return
	}
	s, err := h.planService.Summary(c.Request.Context(), number)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSession godoc
// @Summary Log the result of one session
// @Tags Weeks
// @Accept json
// @Produce json
// @Param number path int true "Week number (1-12)"
// @Param index path int true "Session index (0-6)"
// @Param session body LogSessionRequest true "Done flag and optional distance"
// @Success 200 {object} domain.Week
// @Failure 404 {object} gin.H "Week or session not found"
// @Security BearerAuth
// @Router /weeks/{number}/sessions/{index} [patch]
func (h *PlanHandler) UpdateSession(c *gin.Context) {
	number, ok := weekNumberParam(c)
	if !ok {
		return
	}
	index, ok := sessionIndexParam(c)
	if !ok {
		return
	}
	var req LogSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	w, err := h.planService.LogSession(c.Request.Context(), number, index, *req.Done, req.Km)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// FillPlanned marks every planned session of the week as done at its planned distance.
func (h *PlanHandler) FillPlanned(c *gin.Context) {
	number, ok := weekNumberParam(c)
	if !ok {
		return
	}
	w, err := h.planService.FillPlanned(c.Request.Context(), number)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *PlanHandler) ResetWeek(c *gin.Context) {
	number, ok := weekNumberParam(c)
	if !ok {
		return
	}
	w, err := h.planService.ResetWeek(c.Request.Context(), number)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// SubmitRegister godoc
// @Summary Submit the end-of-week questionnaire
// @Description Stores the register and adapts the following week's volume.
// @Tags Weeks
// @Accept json
// @Produce json
// @Param number path int true "Week number (1-12)"
// @Param register body domain.WeekRegister true "Week register"
// @Success 200 {object} service.RegisterResult
// @Failure 400 {object} gin.H "Invalid register"
// @Security BearerAuth
// @Router /weeks/{number}/register [post]
func (h *PlanHandler) SubmitRegister(c *gin.Context) {
	number, ok := weekNumberParam(c)
	if !ok {
		return
	}
	var register domain.WeekRegister
	if err := c.ShouldBindJSON(&register); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	res, err := h.planService.SubmitRegister(c.Request.Context(), number, register)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PlanHandler) GetSessionDetails(c *gin.Context) {
	number, ok := weekNumberParam(c)
	if !ok {
		return
	}
	index, ok := sessionIndexParam(c)
	if !ok {
		return
	}
	d, err := h.planService.SessionDetails(c.Request.Context(), number, index)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// CreateSnapshot godoc
// @Summary Store an immutable copy of the plan
// @Tags Plan
// @Produce json
// @Success 201 {object} service.Snapshot
// @Failure 501 {object} gin.H "Object storage not configured"
// @Security BearerAuth
// @Router /plan/snapshots [post]
func (h *PlanHandler) CreateSnapshot(c *gin.Context) {
	snap, err := h.planService.CreateSnapshot(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// --- Helpers ---

func weekNumberParam(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid week number")
		return 0, false
	}
	return number, true
}

func sessionIndexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session index")
		return 0, false
	}
	return index, true
}

// handleServiceError maps service errors to HTTP status codes.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWeekNotFound), errors.Is(err, service.ErrSessionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidPlan), errors.Is(err, service.ErrInvalidRegister):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanNotLoaded):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrSnapshotsDisabled):
		abortWithError(c, http.StatusNotImplemented, err.Error())
	default:
		_ = c.Error(err)
		log.Errorf("%s %s: %s", c.Request.Method, c.Request.URL.Path, err)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
