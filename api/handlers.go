package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/search"
)

// SearchResponse is the body of a successful GET /search.
type SearchResponse struct {
	Query     string     `json:"query"`
	Results   []core.Hit `json:"results"`
	Threshold float64    `json:"threshold"`
}

// DocumentResponse is the body of a successful POST /add_document.
type DocumentResponse struct {
	ID      core.ID `json:"id"`
	Content string  `json:"content"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleSearch(c *gin.Context) {
	req := search.Request{
		Text:      c.Query("text"),
		UserID:    c.Query("user_id"),
		TopK:      DefaultTopK,
		Threshold: DefaultThreshold,
	}

	if raw, ok := c.GetQuery("top_k"); ok {
		topK, err := strconv.Atoi(raw)
		if err != nil {
			s.abort(c, badParam("top_k", raw))
			return
		}
		req.TopK = topK
	}
	if raw, ok := c.GetQuery("threshold"); ok {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.abort(c, badParam("threshold", raw))
			return
		}
		req.Threshold = threshold
	}

	resp, err := s.searcher.Search(c.Request.Context(), req)
	if err != nil {
		s.abort(c, err)
		return
	}

	results := resp.Hits
	if results == nil {
		results = []core.Hit{}
	}
	c.Header("X-Cache", cacheStatus(resp.Cached))
	c.JSON(http.StatusOK, SearchResponse{
		Query:     resp.Query,
		Results:   results,
		Threshold: resp.Threshold,
	})
}

func (s *Server) handleAddDocument(c *gin.Context) {
	content, ok := c.GetQuery("content")
	if !ok {
		content = c.PostForm("content")
	}

	doc, err := s.searcher.AddDocument(c.Request.Context(), content)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, DocumentResponse{ID: doc.ID, Content: doc.Content})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

func cacheStatus(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}
