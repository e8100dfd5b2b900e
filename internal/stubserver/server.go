// Package stubserver serves the dashboard backend contract from fixtures.
// It is a development stand-in for the real backend and never talks to
// GitHub or CI.
package stubserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tinytelemetry/prci/internal/logger"
	"github.com/tinytelemetry/prci/internal/model"
)

// Comment is a PR comment the stub would have posted for a retest.
type Comment struct {
	Owner string
	Repo  string
	PR    int
	Body  string
}

// Server provides the five dashboard endpoints over HTTP.
type Server struct {
	addr     string
	server   *http.Server
	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	fixtures *Fixtures
	comments []Comment
}

// NewServer creates a stub backend. Default addr is "127.0.0.1:5000".
func NewServer(addr string, fixtures *Fixtures) *Server {
	if addr == "" {
		addr = "127.0.0.1:5000"
	}
	if fixtures == nil {
		fixtures = &Fixtures{Authenticated: true, DefaultQuery: model.DefaultQuery}
	}
	fixtures.fillAuthError()
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:     addr,
		fixtures: fixtures,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/api/auth/status", s.handleAuthStatus)
	r.GET("/api/default-query", s.handleDefaultQuery)
	r.POST("/api/search", s.handleSearch)
	r.GET("/api/pr/:owner/:repo/:number", s.handlePRJobs)
	r.POST("/api/retest", s.handleRetest)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go s.server.Serve(listener)
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Comments returns the retest comments posted so far.
func (s *Server) Comments() []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Comment(nil), s.comments...)
}

// SetAuthenticated flips the stub's credential state.
func (s *Server) SetAuthenticated(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures.Authenticated = ok
	s.fixtures.fillAuthError()
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("stub request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) handleAuthStatus(c *gin.Context) {
	s.mu.Lock()
	ok, msg := s.fixtures.Authenticated, s.fixtures.AuthError
	s.mu.Unlock()

	if ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "error": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false, "error": msg})
}

func (s *Server) handleDefaultQuery(c *gin.Context) {
	s.mu.Lock()
	q := s.fixtures.DefaultQuery
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"query": q})
}

func (s *Server) handleSearch(c *gin.Context) {
	var req struct {
		Query   string `json:"query"`
		Page    int    `json:"page"`
		PerPage int    `json:"per_page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = model.DefaultPerPage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fixtures.SearchError != "" {
		c.JSON(http.StatusOK, gin.H{"error": s.fixtures.SearchError, "prs": []model.PullRequest{}, "total": 0})
		return
	}

	terms := freeTextTerms(req.Query)
	matches := make([]model.PullRequest, 0, len(s.fixtures.PRs))
	for _, pr := range s.fixtures.PRs {
		if matchesTerms(pr.PullRequest, terms) {
			matches = append(matches, pr.PullRequest)
		}
	}

	start := (req.Page - 1) * req.PerPage
	if start > len(matches) {
		start = len(matches)
	}
	end := min(start+req.PerPage, len(matches))

	c.JSON(http.StatusOK, gin.H{"prs": matches[start:end], "total": len(matches)})
}

func (s *Server) handlePRJobs(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid PR number"})
		return
	}
	owner, repo := c.Param("owner"), c.Param("repo")

	s.mu.Lock()
	defer s.mu.Unlock()

	pr := s.find(owner, repo, number)
	if pr == nil {
		// The real backend reports empty lists for unknown PRs.
		c.JSON(http.StatusOK, gin.H{
			"pr":      gin.H{"owner": owner, "repo": repo, "number": number},
			"e2e":     emptyJobSet(),
			"payload": emptyJobSet(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pr":      gin.H{"owner": owner, "repo": repo, "number": number},
		"e2e":     jobSetJSON(pr.E2E.JobSet),
		"payload": jobSetJSON(pr.Payload.JobSet),
	})
}

func (s *Server) handleRetest(c *gin.Context) {
	var req struct {
		Owner string   `json:"owner" binding:"required"`
		Repo  string   `json:"repo" binding:"required"`
		PR    int      `json:"pr" binding:"required"`
		Jobs  []string `json:"jobs" binding:"required,min=1"`
		Type  string   `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if req.Type == "" {
		req.Type = string(model.JobClassE2E)
	}

	class := model.JobClass(req.Type)
	var prefix string
	switch class {
	case model.JobClassE2E:
		prefix = "/test "
	case model.JobClassPayload:
		prefix = "/payload-job "
	default:
		c.JSON(http.StatusOK, gin.H{"error": fmt.Sprintf("Invalid job type: %s", req.Type)})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fixtures.Authenticated {
		c.JSON(http.StatusOK, gin.H{"error": "auth_failed"})
		return
	}

	lines := make([]string, 0, len(req.Jobs))
	for _, job := range req.Jobs {
		lines = append(lines, prefix+job)
	}
	s.comments = append(s.comments, Comment{
		Owner: req.Owner,
		Repo:  req.Repo,
		PR:    req.PR,
		Body:  strings.Join(lines, "\n"),
	})
	logger.Info("stub retest comment",
		zap.String("repo", req.Owner+"/"+req.Repo),
		zap.Int("pr", req.PR),
		zap.Strings("jobs", req.Jobs),
		zap.String("type", req.Type),
	)

	if pr := s.find(req.Owner, req.Repo, req.PR); pr != nil {
		startRunning(pr.jobs(class), req.Jobs)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// find returns the fixture PR. Callers hold s.mu.
func (s *Server) find(owner, repo string, number int) *FixturePR {
	for _, pr := range s.fixtures.PRs {
		if pr.Owner == owner && pr.Repo == repo && pr.Number == number {
			return pr
		}
	}
	return nil
}

// startRunning moves retested jobs into the running list. They stay in the
// failed list too, as the real CI keeps the last failed result until the new
// run finishes.
func startRunning(jobs *FixtureJobs, names []string) {
	for _, name := range names {
		if !jobs.HasRunning(name) {
			jobs.Running = append(jobs.Running, model.JobStatus{Name: name})
		}
	}
}

// jobSetJSON encodes running jobs as plain names, as the real backend does.
func jobSetJSON(set model.JobSet) gin.H {
	failed := set.Failed
	if failed == nil {
		failed = []model.JobStatus{}
	}
	running := make([]string, 0, len(set.Running))
	for _, r := range set.Running {
		running = append(running, r.Name)
	}
	h := gin.H{"failed": failed, "running": running}
	if set.Error != "" {
		h["error"] = set.Error
	}
	return h
}

func emptyJobSet() gin.H {
	return gin.H{"failed": []model.JobStatus{}, "running": []string{}}
}

// freeTextTerms drops GitHub search qualifiers (is:pr, author:x, ...).
func freeTextTerms(query string) []string {
	var terms []string
	for _, f := range strings.Fields(query) {
		if strings.Contains(f, ":") {
			continue
		}
		terms = append(terms, strings.ToLower(f))
	}
	return terms
}

func matchesTerms(pr model.PullRequest, terms []string) bool {
	hay := strings.ToLower(strings.Join([]string{pr.Owner, pr.Repo, pr.Title, pr.Author}, " "))
	for _, t := range terms {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}
