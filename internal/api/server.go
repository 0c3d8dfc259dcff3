package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ankit/oppgenie/internal/aggregate"
	"github.com/ankit/oppgenie/internal/ai"
	"github.com/ankit/oppgenie/internal/auth"
	"github.com/ankit/oppgenie/internal/chat"
	"github.com/ankit/oppgenie/internal/config"
	"github.com/ankit/oppgenie/internal/db"
	"github.com/ankit/oppgenie/internal/models"
	"github.com/ankit/oppgenie/internal/sources"
)

type Server struct {
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	AuthService *auth.Service
	Aggregator  *aggregate.Aggregator
	Chat        *chat.Transport
	Store       chat.MessageStore
	SeedStore   *db.SeedStore
	AI          ai.Generator
	Config      *config.Config
}

func NewServer(pool *pgxpool.Pool, cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	logos := sources.NewLogoResolver()
	agg := aggregate.New(cfg.Location,
		sources.NewGitHub(),
		sources.NewCurated(),
		sources.NewJobsFeed(cfg.FeedBaseURL, cfg.Location, logos),
		sources.NewInternshipsFeed(cfg.FeedBaseURL, cfg.Location, logos),
		sources.NewVolunteerFeed(cfg.FeedBaseURL, cfg.Location, logos),
	)

	store := chat.NewPGStore(pool)
	transport := chat.NewTransport(store, chat.NewPGSubscriber(pool))

	s := &Server{
		Echo:        e,
		DB:          pool,
		AuthService: auth.NewService(pool),
		Aggregator:  agg,
		Chat:        transport,
		Store:       store,
		SeedStore:   db.NewSeedStore(pool),
		AI:          ai.NewGemini(cfg.GeminiAPIKey),
		Config:      cfg,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/trending", s.handleTrending)
	api.GET("/opportunities/search", s.handleSearch)
	api.GET("/opportunities/category/:category", s.handleByCategory)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/categories", s.handleCategories)

	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	chatGroup := api.Group("/chat")
	chatGroup.Use(auth.Middleware)
	chatGroup.GET("/messages", s.handleChatHistory)
	chatGroup.POST("/messages", s.handleChatSend)
	chatGroup.DELETE("/messages", s.handleChatClear)
	chatGroup.GET("/stream", s.handleChatStream)

	saved := api.Group("/saved")
	saved.Use(auth.Middleware)
	saved.POST("/:id", s.handleSaveOpportunity)
	saved.DELETE("/:id", s.handleUnsaveOpportunity)
	saved.GET("", s.handleGetSaved)

	admin := api.Group("/admin")
	admin.Use(auth.Middleware, auth.AdminMiddleware(s.Config.AdminEmail))
	admin.GET("/analytics", s.handleAnalytics)
	admin.POST("/seed", s.handleSeed)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Opportunity handlers

func (s *Server) handleListOpportunities(c echo.Context) error {
	ctx := c.Request().Context()
	q := c.QueryParam("q")

	var opps []models.Opportunity
	if q != "" {
		opps = s.Aggregator.Search(ctx, q)
	} else {
		opps = s.Aggregator.FetchAll(ctx, "")
	}
	if opps == nil {
		opps = []models.Opportunity{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"opportunities": opps,
		"total":         len(opps),
	})
}

func (s *Server) handleSearch(c echo.Context) error {
	opps := s.Aggregator.Search(c.Request().Context(), c.QueryParam("q"))
	if opps == nil {
		opps = []models.Opportunity{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"opportunities": opps,
		"total":         len(opps),
	})
}

func (s *Server) handleTrending(c echo.Context) error {
	opps := s.Aggregator.Trending(c.Request().Context())
	if opps == nil {
		opps = []models.Opportunity{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"opportunities": opps,
		"total":         len(opps),
	})
}

func (s *Server) handleByCategory(c echo.Context) error {
	category := c.Param("category")
	if !models.ValidCategory(category) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown category"})
	}

	opps := s.Aggregator.ByCategory(c.Request().Context(), category)
	if opps == nil {
		opps = []models.Opportunity{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"opportunities": opps,
		"total":         len(opps),
	})
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	opp, ok := s.Aggregator.Get(c.Request().Context(), c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Categories)
}

// Auth handlers

func (s *Server) handleSignup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// Chat handlers

func (s *Server) handleChatHistory(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	msgs, err := s.Chat.History(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load messages"})
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return c.JSON(http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleChatSend(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	userMsg, err := s.Chat.Send(ctx, userID, models.RoleUser, req.Content)
	if err != nil {
		// The assistant turn is skipped when the user turn never persisted.
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	reply := s.AI.Generate(ctx, []models.ChatMessage{*userMsg})

	assistantMsg, err := s.Chat.Send(ctx, userID, models.RoleAssistant, reply)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"user":      userMsg,
		"assistant": assistantMsg,
	})
}

func (s *Server) handleChatClear(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	deleted, err := s.Chat.Clear(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to clear conversation"})
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": deleted})
}

// handleChatStream pushes whole-history snapshots over SSE as the
// conversation changes, ending with a terminal error event when the
// subscription gives up.
func (s *Server) handleChatStream(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	session := s.Chat.Watch(ctx, userID)

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepalive.C:
			fmt.Fprint(resp, ": keepalive\n\n")
			resp.Flush()
		case snap, ok := <-session.Snapshots:
			if !ok {
				return nil
			}
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			fmt.Fprintf(resp, "event: snapshot\ndata: %s\n\n", data)
			resp.Flush()
		case failure, ok := <-session.Failures:
			if !ok {
				return nil
			}
			fmt.Fprintf(resp, "event: error\ndata: %q\n\n", failure.Error())
			resp.Flush()
			return nil
		}
	}
}

// Saved opportunity handlers

func (s *Server) handleSaveOpportunity(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	oppID := c.Param("id")
	if oppID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}

	if err := s.AuthService.SaveOpportunity(c.Request().Context(), userID, oppID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save opportunity"})
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleUnsaveOpportunity(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := s.AuthService.UnsaveOpportunity(c.Request().Context(), userID, c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to unsave opportunity"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "unsaved"})
}

func (s *Server) handleGetSaved(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ids, err := s.AuthService.SavedOpportunityIDs(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch saved opportunities"})
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, ids)
}

// Admin handlers

func (s *Server) handleAnalytics(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := s.Store.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load analytics"})
	}

	seeded, err := s.SeedStore.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load analytics"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"chat":               stats,
		"seededOpportunities": seeded,
	})
}

func (s *Server) handleSeed(c echo.Context) error {
	ctx := c.Request().Context()

	catalog := sources.NewCurated()
	opps, err := catalog.Fetch(ctx, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	written, err := s.SeedStore.Seed(ctx, opps)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Seed complete",
		"count":   written,
	})
}

func (s *Server) Start(port int) error {
	return s.Echo.Start(fmt.Sprintf(":%d", port))
}
