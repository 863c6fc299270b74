// Package dashboard serves a small JSON API over the pipeline: stage runs,
// one-off generation, tab inspection, ad-hoc scoring and Prometheus metrics.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/content-optimizer/internal/ai"
	"github.com/content-optimizer/internal/content"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/sentiment"
	"github.com/content-optimizer/internal/stage/abtester"
	"github.com/content-optimizer/internal/stage"
	"github.com/content-optimizer/internal/storage"
	"github.com/content-optimizer/internal/viral"
	"github.com/content-optimizer/pkg/logger"
	"github.com/content-optimizer/pkg/telemetry"
)

// DefaultTabLimit caps the rows returned by GET /api/tabs/:tab
const DefaultTabLimit = 50

// ShutdownTimeout bounds graceful shutdown of ListenAndServe
const ShutdownTimeout = 5 * time.Second

// StageRunner runs registered stages by name
type StageRunner interface {
	Names() []string
	Run(ctx context.Context, name string) (*stage.Result, error)
}

// OneShotGenerator generates and records copy for one topic and platform
type OneShotGenerator interface {
	GenerateOne(ctx context.Context, topic, platform string) (string, error)
}

// TableReader reads a whole tab
type TableReader interface {
	ReadAll(ctx context.Context, tab string) (*models.Table, error)
}

// Options are the collaborators of a Server
type Options struct {
	Runner    StageRunner
	Generator OneShotGenerator
	Store     TableReader
	Tabs      []string // tabs readable through the API
	Predictor *viral.Predictor
	Mode      string // gin mode
}

// Server is the dashboard HTTP handler
type Server struct {
	runner    StageRunner
	generator OneShotGenerator
	store     TableReader
	tabs      map[string]struct{}
	predictor *viral.Predictor
	log       *logger.Logger
	router    *gin.Engine
}

// New builds the server and its routes
func New(opts Options, log *logger.Logger) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.Predictor == nil {
		opts.Predictor = viral.Default()
	}

	s := &Server{
		runner:    opts.Runner,
		generator: opts.Generator,
		store:     opts.Store,
		tabs:      make(map[string]struct{}, len(opts.Tabs)),
		predictor: opts.Predictor,
		log:       log.WithComponent("dashboard"),
	}
	for _, tab := range opts.Tabs {
		s.tabs[tab] = struct{}{}
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	api := router.Group("/api")
	api.GET("/stages", s.listStages)
	api.POST("/stages/:name/run", s.runStage)
	api.POST("/generate", s.generate)
	api.GET("/tabs/:tab", s.readTab)
	api.POST("/score", s.score)

	s.router = router
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the underlying router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listStages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stages": s.runner.Names()})
}

type stageResponse struct {
	*stage.Result
	Errors []string `json:"errors"`
}

func (s *Server) runStage(c *gin.Context) {
	name := c.Param("name")

	res, err := s.runner.Run(c.Request.Context(), name)
	if errors.Is(err, stage.ErrUnknownStage) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var body stageResponse
	if res != nil {
		body = stageResponse{Result: res, Errors: res.ErrorStrings()}
	}
	if err != nil {
		s.log.Error().Err(err).Str("stage", name).Msg("Stage run from dashboard failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": body})
		return
	}
	c.JSON(http.StatusOK, body)
}

// GenerateRequest asks for copy about a topic, or about a brief when it
// names a product, description or keywords
type GenerateRequest struct {
	Topic    string    `json:"topic"`
	Platform string    `json:"platform" binding:"required"`
	Brief    *ai.Brief `json:"brief"`
}

func (s *Server) generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	topic := req.Topic
	if req.Brief != nil && !req.Brief.Empty() {
		topic = ai.BuildBrief(*req.Brief)
	}
	if strings.TrimSpace(topic) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic or brief is required"})
		return
	}

	text, err := s.generator.GenerateOne(c.Request.Context(), topic, req.Platform)
	if errors.Is(err, models.ErrUnsupportedPlatform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("platform", req.Platform).Msg("Generation from dashboard failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topic":    topic,
		"platform": models.ParsePlatform(req.Platform),
		"content":  text,
	})
}

func (s *Server) readTab(c *gin.Context) {
	tab := c.Param("tab")
	if _, ok := s.tabs[tab]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tab"})
		return
	}

	limit := DefaultTabLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	table, err := s.store.ReadAll(c.Request.Context(), tab)
	if errors.Is(err, storage.ErrTabNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows := table.Rows
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Fields)
	}

	c.JSON(http.StatusOK, gin.H{
		"tab":    table.Name,
		"header": table.Header,
		"total":  len(table.Rows),
		"rows":   out,
	})
}

// ScoreRequest is ad-hoc text to run through the offline rules
type ScoreRequest struct {
	Text     string `json:"text" binding:"required"`
	Platform string `json:"platform"`
}

// ScoreResponse is every offline signal for one text
type ScoreResponse struct {
	Platform          models.Platform         `json:"platform"`
	Score             int                     `json:"score"`
	Variant           string                  `json:"variant"`
	VariantScore      int                     `json:"variant_score"`
	Winner            models.VariantLabel     `json:"winner"`
	Optimized         string                  `json:"optimized"`
	OptimizationScore int                     `json:"optimization_score"`
	Sentiment         models.SentimentResult  `json:"sentiment"`
	Prediction        models.PredictionResult `json:"prediction"`
}

func (s *Server) score(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	c.JSON(http.StatusOK, Analyze(s.predictor, req.Text, models.ParsePlatform(req.Platform)))
}

// Analyze computes every offline signal for text on platform
func Analyze(predictor *viral.Predictor, text string, platform models.Platform) ScoreResponse {
	ab := abtester.Compare(models.ContentItem{Platform: platform, OriginalText: text})
	optimized := content.Optimize(text, platform)

	return ScoreResponse{
		Platform:          platform,
		Score:             ab.A.Score,
		Variant:           ab.B.Text,
		VariantScore:      ab.B.Score,
		Winner:            ab.Winner,
		Optimized:         optimized,
		OptimizationScore: content.OptimizationScore(text, optimized, platform),
		Sentiment:         sentiment.Classify(text),
		Prediction:        predictor.Predict(float64(ab.A.Score)/10, text),
	}
}
