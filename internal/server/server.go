// Package server exposes the planning and adaptation operations over
// HTTP with bearer-token authentication.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fitweek/internal/app"
	"fitweek/internal/contract"
)

// Server holds the HTTP surface over the application facade.
type Server struct {
	app    *app.App
	tokens *TokenService
}

func NewServer(a *app.App, tokens *TokenService) *Server {
	return &Server{app: a, tokens: tokens}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), gin.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")

	v1.POST("/auth/token", s.issueToken)

	protected := v1.Group("")
	protected.Use(AuthMiddleware(s.tokens))
	{
		protected.PUT("/setup/questionnaire", s.saveQuestionnaire)
		protected.PUT("/setup/equipment", s.saveEquipment)
		protected.PUT("/setup/availability", s.saveAvailability)

		protected.GET("/pantry", s.getPantry)
		protected.PUT("/pantry", s.savePantry)
		protected.GET("/pantry/gaps", s.pantryGaps)
		protected.POST("/pantry/replan", s.replan)

		protected.POST("/plans/generate", s.generatePlan)
		protected.GET("/plans/current", s.currentPlan)
		protected.POST("/plans/regenerate-day", s.regenerateDay)

		protected.POST("/logs", s.logAdherence)

		protected.POST("/clip", s.clipRecipe)

		protected.GET("/metrics/daily", s.dailyUsage)
	}

	return router
}

// issueToken registers the profile and returns a signed token. The
// instance is single-tenant; whoever can reach it owns it.
func (s *Server) issueToken(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		Email  string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.app.Store().Profiles.Save(c.Request.Context(), contract.User{ID: req.UserID, Email: req.Email}, ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := s.tokens.IssueToken(req.UserID, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) saveQuestionnaire(c *gin.Context) {
	var q contract.Questionnaire
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.app.Store().Profiles.SaveQuestionnaire(c.Request.Context(), c.GetString("user_id"), &q); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) saveEquipment(c *gin.Context) {
	var equipment contract.Equipment
	if err := c.ShouldBindJSON(&equipment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.app.Store().Profiles.SaveEquipment(c.Request.Context(), c.GetString("user_id"), &equipment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) saveAvailability(c *gin.Context) {
	var availability contract.Availability
	if err := c.ShouldBindJSON(&availability); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.app.Store().Profiles.SaveAvailability(c.Request.Context(), c.GetString("user_id"), &availability); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) getPantry(c *gin.Context) {
	snapshot, err := s.app.Store().Pantry.Get(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pantry data"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) savePantry(c *gin.Context) {
	var snapshot contract.PantrySnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.app.Store().Pantry.Save(c.Request.Context(), c.GetString("user_id"), &snapshot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) generatePlan(c *gin.Context) {
	var req struct {
		WeekStart string `json:"week_start"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WeekStart == "" {
		req.WeekStart = app.WeekStartOf(time.Now())
	}

	res, err := s.app.GeneratePlan(c.Request.Context(), c.GetString("user_id"), req.WeekStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch res.Status {
	case contract.StatusOK:
		c.JSON(http.StatusOK, gin.H{"status": res.Status, "plan": res.Plan})
	case contract.StatusInfoNeeded:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": res.Status, "missing_fields": res.Missing, "message": res.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"status": res.Status, "message": res.Message})
	}
}

func (s *Server) currentPlan(c *gin.Context) {
	plan, err := s.app.CurrentPlan(c.Request.Context(), c.GetString("user_id"), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no plan for the current week"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) regenerateDay(c *gin.Context) {
	var req struct {
		Date   string `json:"date" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := s.app.RegenerateDay(c.Request.Context(), c.GetString("user_id"), req.Date, req.Reason, time.Now())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) logAdherence(c *gin.Context) {
	var entry contract.AdherenceLog
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if entry.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}
	if entry.RPE < 0 || entry.RPE > 10 || entry.Soreness < 0 || entry.Soreness > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rpe and soreness must be between 1 and 10"})
		return
	}

	res, err := s.app.LogAdherence(c.Request.Context(), c.GetString("user_id"), entry, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": res.Status, "reason": res.Reason, "patches": res.Patches})
}

func (s *Server) pantryGaps(c *gin.Context) {
	gaps, err := s.app.PantryGaps(c.Request.Context(), c.GetString("user_id"), time.Now())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"missing_ingredients": gaps})
}

func (s *Server) replan(c *gin.Context) {
	res, err := s.app.RestockReplan(c.Request.Context(), c.GetString("user_id"), time.Now())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": res.Status, "reason": res.Reason, "plan": res.Adapted})
}

func (s *Server) clipRecipe(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := s.app.ClipRecipe(c.Request.Context(), c.GetString("user_id"), req.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (s *Server) dailyUsage(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	usage, err := s.app.DailyUsage(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_usage": usage})
}
