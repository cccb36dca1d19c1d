// Package dashboard implements the JSON API backing the mood dashboard:
// login, chat listing, and the time-bucketed mood and count series.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/moodmeter/moodmeter/internal/config"
	"github.com/moodmeter/moodmeter/internal/database"
	"github.com/moodmeter/moodmeter/internal/mood"
)

// Server serves the dashboard API over HTTP.
type Server struct {
	cfg    config.DashboardConfig
	store  database.Store
	log    *slog.Logger
	cache  *seriesCache
	router *gin.Engine
}

// NewServer builds the dashboard API server with its routes configured.
func NewServer(cfg config.DashboardConfig, store database.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		store:  store,
		log:    logger.With("component", "dashboard"),
		cache:  newSeriesCache(),
		router: router,
	}

	api := router.Group("/api")
	api.POST("/login", s.handleLogin)

	authed := api.Group("", s.authMiddleware())
	authed.GET("/chats", s.handleListChats)
	authed.GET("/chats/:id/mood", s.handleMoodSeries)
	authed.GET("/chats/:id/counts", s.handleCountSeries)

	return s
}

// Run serves the API until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Dashboard API listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashboard server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down dashboard API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown failed: %w", err)
	}
	return nil
}

type loginRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and password are required"})
		return
	}

	cred, err := s.store.GetCredential(c.Request.Context(), req.UserID)
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to load credential", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login temporarily unavailable"})
		return
	}

	// Same response for unknown user and wrong password.
	if cred == nil || bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)) != nil {
		s.log.DebugContext(c.Request.Context(), "Rejected dashboard login", "user_id", req.UserID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.issueToken(req.UserID, time.Now())
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to issue token", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login temporarily unavailable"})
		return
	}

	s.log.InfoContext(c.Request.Context(), "Dashboard login", "user_id", req.UserID)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(s.cfg.TokenTTL.Seconds()),
	})
}

type chatResponse struct {
	ChatID int64  `json:"chat_id"`
	Name   string `json:"name"`
}

func (s *Server) handleListChats(c *gin.Context) {
	userID := callerID(c)

	chats, err := s.store.GetUserChats(c.Request.Context(), userID)
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to list user chats", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}

	out := make([]chatResponse, 0, len(chats))
	for _, chat := range chats {
		out = append(out, chatResponse{ChatID: chat.ChatID, Name: chat.Name})
	}
	c.JSON(http.StatusOK, gin.H{"chats": out})
}

// seriesQuery is the validated parameter set shared by both series endpoints.
type seriesQuery struct {
	chatID      int64
	granularity mood.Granularity
	start       time.Time
	end         time.Time
}

// parseSeriesQuery validates path and query parameters and the caller's
// membership in the chat. On failure it has already written the response.
func (s *Server) parseSeriesQuery(c *gin.Context) (seriesQuery, bool) {
	var q seriesQuery

	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || chatID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return q, false
	}

	start, err := time.ParseInLocation("2006-01-02", c.Query("start"), time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be a YYYY-MM-DD date"})
		return q, false
	}
	end, err := time.ParseInLocation("2006-01-02", c.Query("end"), time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be a YYYY-MM-DD date"})
		return q, false
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must not be after end"})
		return q, false
	}

	userID := callerID(c)
	linked, err := s.store.IsUserLinked(c.Request.Context(), userID, chatID)
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to check chat membership", "user_id", userID, "chat_id", chatID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
		return q, false
	}
	if !linked {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not linked to this chat"})
		return q, false
	}

	q.chatID = chatID
	q.granularity = mood.ParseGranularity(c.Query("granularity"))
	q.start = start
	q.end = end
	return q, true
}

// fetchSamples loads the chat's messages for the query's date range, reduced
// to aggregation samples.
func (s *Server) fetchSamples(ctx context.Context, q seriesQuery) ([]mood.Sample, error) {
	rangeStart, rangeEnd := mood.DayRange(q.start, q.end)
	messages, err := s.store.GetMessagesInRange(ctx, q.chatID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	samples := make([]mood.Sample, len(messages))
	for i, m := range messages {
		samples[i] = mood.Sample{Time: m.Timestamp, Label: m.Label}
	}
	return samples, nil
}

// entryTTL picks the cache lifetime: permanent for immutable historical
// ranges, the configured TTL otherwise.
func (s *Server) entryTTL(permanent bool) time.Duration {
	if permanent {
		return 0
	}
	return s.cfg.CacheTTL
}

func (s *Server) handleMoodSeries(c *gin.Context) {
	q, ok := s.parseSeriesQuery(c)
	if !ok {
		return
	}

	key, permanent := cacheKey("mood", q.chatID, q.granularity, q.start, q.end, time.Now())
	if cached, hit := s.cache.Get(key); hit {
		c.JSON(http.StatusOK, gin.H{"series": cached})
		return
	}

	samples, err := s.fetchSamples(c.Request.Context(), q)
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to load mood series", "chat_id", q.chatID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load series"})
		return
	}

	series := mood.BuildMoodSeries(samples, q.granularity)
	s.cache.Set(key, series, s.entryTTL(permanent))
	c.JSON(http.StatusOK, gin.H{"series": series})
}

func (s *Server) handleCountSeries(c *gin.Context) {
	q, ok := s.parseSeriesQuery(c)
	if !ok {
		return
	}

	key, permanent := cacheKey("counts", q.chatID, q.granularity, q.start, q.end, time.Now())
	if cached, hit := s.cache.Get(key); hit {
		c.JSON(http.StatusOK, gin.H{"series": cached})
		return
	}

	samples, err := s.fetchSamples(c.Request.Context(), q)
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to load count series", "chat_id", q.chatID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load series"})
		return
	}

	series := mood.BuildCountSeries(samples, q.granularity)
	s.cache.Set(key, series, s.entryTTL(permanent))
	c.JSON(http.StatusOK, gin.H{"series": series})
}
