// Package server exposes the tagging core over HTTP for host applications
// that integrate via API rather than the CLI.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tagwise/tagwise/ai/metrics"
	"github.com/tagwise/tagwise/ai/prompt"
	"github.com/tagwise/tagwise/ai/provider"
	"github.com/tagwise/tagwise/internal/profile"
)

// Server hosts the suggest API and the metrics endpoint.
type Server struct {
	echoServer *echo.Echo
	profile    *profile.Profile
	adapter    provider.Adapter
	client     *provider.Client
	exporter   *metrics.Exporter
}

// NewServer assembles the HTTP server around a configured adapter.
func NewServer(p *profile.Profile, adapter provider.Adapter, client *provider.Client, exporter *metrics.Exporter) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echoServer: e,
		profile:    p,
		adapter:    adapter,
		client:     client,
		exporter:   exporter,
	}

	e.GET("/healthz", s.handleHealthz)
	if exporter != nil {
		e.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	}
	e.POST("/api/v1/suggest", s.handleSuggest)

	return s
}

// Start begins serving and blocks until the listener fails.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	slog.Info("server: listening", "addr", addr)
	return s.echoServer.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("server: failed to shutdown gracefully", "error", err)
	}
}

type suggestRequest struct {
	Content       string   `json:"content"`
	CandidateTags []string `json:"candidateTags"`
	MaxTags       int      `json:"maxTags"`
	Language      string   `json:"language"`
}

type suggestResponse struct {
	MatchedExistingTags []string `json:"matchedExistingTags"`
	SuggestedTags       []string `json:"suggestedTags"`
	Tags                []string `json:"tags"`
	Strategy            string   `json:"strategy"`
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.profile.Version,
	})
}

// handleSuggest runs one content string through prompt building, the
// provider call, and extraction. It does not touch any vault; merging the
// returned tags into a note is the caller's concern.
func (s *Server) handleSuggest(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	maxTags := req.MaxTags
	if maxTags <= 0 {
		maxTags = s.profile.MaxTags
	}
	language := req.Language
	if language == "" {
		language = s.profile.Language
	}

	p, err := prompt.Build(req.Content, req.CandidateTags, prompt.ModeGenerateNew, maxTags, language)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	resp, err := s.client.Send(c.Request().Context(), s.adapter, p)
	if s.exporter != nil {
		s.exporter.RecordRequest(s.adapter.Name(), time.Since(start), err == nil)
	}
	if err != nil {
		switch err.(type) {
		case *provider.ConfigError:
			return echo.NewHTTPError(http.StatusPreconditionFailed, err.Error())
		case *provider.NetworkError:
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	if s.exporter != nil {
		s.exporter.RecordExtraction(resp.Strategy)
	}

	return c.JSON(http.StatusOK, suggestResponse{
		MatchedExistingTags: resp.MatchedExistingTags,
		SuggestedTags:       resp.SuggestedTags,
		Tags:                resp.Tags,
		Strategy:            resp.Strategy,
	})
}
