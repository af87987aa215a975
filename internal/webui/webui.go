// Package webui serves a single-page data explorer for judged experiment
// CSVs. It is a scaffold for interactive use, not a hardened product: the
// CLI and MCP surfaces stay the primary entry points.
package webui

import (
	"bytes"
	_ "embed"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gnosis/internal/aggregate"
	"gnosis/internal/logging"
	"gnosis/internal/table"
)

//go:embed index.html
var indexHTML []byte

// Server holds the explorer state: one loaded table and one aggregation
// result at a time.
type Server struct {
	engine *gin.Engine

	data   *table.Table
	result *table.Table
}

// NewServer builds the explorer routes.
func NewServer() *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{engine: gin.New()}
	s.engine.Use(gin.Recovery())

	s.engine.GET("/", s.index)
	s.engine.POST("/api/load", s.load)
	s.engine.POST("/api/aggregate", s.aggregate)
	s.engine.GET("/api/download", s.download)
	return s
}

// Run serves the explorer on addr.
func (s *Server) Run(addr string) error {
	logging.New("webui").Info("serving data explorer", "addr", addr)
	return s.engine.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

type loadRequest struct {
	Path string `json:"path" binding:"required"`
}

func (s *Server) load(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := table.ReadCSV(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.data = data
	s.result = nil

	c.JSON(http.StatusOK, gin.H{
		"columns": data.Columns(),
		"rows":    data.Len(),
		"preview": preview(data, 10),
	})
}

type aggregateRequest struct {
	GroupBy []string `json:"group_by" binding:"required"`
	Value   string   `json:"value"`
	Fn      string   `json:"fn"`
}

func (s *Server) aggregate(c *gin.Context) {
	if s.data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data loaded"})
		return
	}
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fn := req.Fn
	if fn == "" {
		fn = "mean"
	}
	metrics := map[string]aggregate.Metric{
		"count": aggregate.Named(aggregate.CountName),
	}
	if req.Value != "" {
		metrics[fn+"_"+req.Value] = columnMetric(fn, req.Value)
	}

	result, err := aggregate.New().Aggregate(s.data, req.GroupBy, metrics)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.result = result

	c.JSON(http.StatusOK, gin.H{
		"columns": result.Columns(),
		"rows":    result.Len(),
		"preview": preview(result, 50),
	})
}

func (s *Server) download(c *gin.Context) {
	if s.result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no aggregation result"})
		return
	}
	var buf bytes.Buffer
	if err := table.WriteCSVTo(s.result, &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="aggregated.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// columnMetric applies a registry reduction to one column's values.
func columnMetric(fn, col string) aggregate.Metric {
	return aggregate.Custom(func(t *table.Table) (table.Value, error) {
		reduce, err := aggregate.NewRegistry().Lookup(strings.ToLower(fn))
		if err != nil {
			return nil, err
		}
		vals := t.Floats(col)
		if len(vals) == 0 {
			return nil, nil
		}
		return reduce(vals), nil
	})
}

func preview(t *table.Table, n int) []table.Row {
	if t.Len() < n {
		n = t.Len()
	}
	out := make([]table.Row, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, t.Row(i))
	}
	return out
}
