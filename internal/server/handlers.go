package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/budeshi/budeshi/internal/analytics"
	"github.com/budeshi/budeshi/internal/contract"
	"github.com/budeshi/budeshi/internal/export"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/budeshi/budeshi/internal/repository"
	"github.com/budeshi/budeshi/internal/service"
	"github.com/gin-gonic/gin"
)

// listQuery holds the project filter query parameters.
type listQuery struct {
	Search    string `form:"q"`
	Status    string `form:"status"`
	Ministry  string `form:"ministry"`
	MinBudget *int64 `form:"min_budget" binding:"omitempty,min=0"`
	MaxBudget *int64 `form:"max_budget" binding:"omitempty,min=0"`
}

func (q listQuery) toProjectQuery() service.ProjectQuery {
	return service.ProjectQuery{
		Search: q.Search,
		Criteria: analytics.Criteria{
			Status:    q.Status,
			Ministry:  q.Ministry,
			MinBudget: q.MinBudget,
			MaxBudget: q.MaxBudget,
		},
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleChat resolves one message against the history supplied by the
// caller. The server keeps no conversation state.
func (s *Server) handleChat(c *gin.Context) {
	var req contract.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	history, err := contract.ToTurns(req.History)
	if err != nil {
		badRequest(c, err)
		return
	}

	reply, err := s.responder.Respond(c.Request.Context(), req.Message, history)
	if reply == nil {
		if errors.Is(err, intelligence.ErrEmptyInput) {
			badRequest(c, err)
			return
		}
		s.internalError(c, err)
		return
	}

	resp := contract.ChatResponse{
		UserTurn: contract.FromTurn(reply.UserTurn),
		Reply:    contract.FromTurn(reply.Turn),
		Path:     string(reply.Path),
		Intent:   string(reply.Intent),
	}
	if err != nil {
		resp.Error = llm.ErrorCode(err)
		s.logger.WarnContext(c.Request.Context(), "chat resolution failed", "path", reply.Path, "error", err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListProjects(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	projects, err := s.projects.List(c.Request.Context(), q.toProjectQuery())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromProjects(projects))
}

func (s *Server) handleSearchProjects(c *gin.Context) {
	projects, err := s.projects.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromProjects(projects))
}

func (s *Server) handleGetProject(c *gin.Context) {
	id := c.Param("id")
	p, err := s.projects.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, contract.ErrorBody{Error: "project " + id + " not found"})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromProject(*p))
}

func (s *Server) handleStats(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	stats, err := s.projects.Stats(c.Request.Context(), q.toProjectQuery())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleFacets(c *gin.Context) {
	facets, err := s.projects.Facets(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, facets)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	var sb strings.Builder
	if _, err := s.projects.ExportCSV(c.Request.Context(), &sb, q.toProjectQuery()); err != nil {
		s.internalError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.ProjectsFilename(time.Now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(sb.String()))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, contract.ErrorBody{Error: err.Error()})
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.ErrorContext(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, contract.ErrorBody{Error: "internal error"})
}
