// Package mcp exposes workbench steps as MCP tools over stdio, so coding
// agents can run analytics without shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"gnosis/internal/analytics"
	"gnosis/internal/judge"
	"gnosis/internal/tracker"
	"gnosis/internal/viz"
)

// Server wraps the MCP SDK server around the workbench steps.
type Server struct {
	MCPServer *sdkmcp.Server
	Runs      tracker.Store // backing store for list_experiments; may be nil
}

// NewServer creates an MCP server with the workbench tools registered.
func NewServer(runs tracker.Store) *Server {
	s := &Server{Runs: runs}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "gnosis", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over stdio until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_analytics",
		Description: "Aggregate a judged CSV by group keys. Averages rating columns when no metrics are given.",
	}, s.handleRunAnalytics)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_judge",
		Description: "Rate completions in a CSV with the keyword judge and append judge_rating columns.",
	}, s.handleRunJudge)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_visualization",
		Description: "Render a comparative, statistical or radar chart of a CSV into an HTML report.",
	}, s.handleRunVisualization)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_experiments",
		Description: "List tracked experiment runs, optionally filtered by tag.",
	}, s.handleListExperiments)
}

// --- Tool input/output types ---

type runAnalyticsInput struct {
	Input   string   `json:"input" jsonschema:"judged CSV path"`
	Output  string   `json:"output" jsonschema:"aggregated CSV path"`
	GroupBy []string `json:"group_by" jsonschema:"aggregation key columns"`
	Metrics []string `json:"metrics,omitempty" jsonschema:"metric names (avg_<col>, count, or registry functions); empty detects rating columns"`
}

type runJudgeInput struct {
	Input       string `json:"input" jsonschema:"completions CSV path"`
	Output      string `json:"output" jsonschema:"judged CSV path"`
	TemplateDir string `json:"template_dir,omitempty" jsonschema:"keyword template directory"`
}

type runVisualizationInput struct {
	Input   string   `json:"input" jsonschema:"CSV path to plot"`
	Output  string   `json:"output" jsonschema:"HTML report path"`
	Kind    string   `json:"kind" jsonschema:"chart kind: comparative, statistical or radar"`
	GroupBy string   `json:"group_by" jsonschema:"category axis column"`
	Hue     string   `json:"hue,omitempty" jsonschema:"series column for comparative charts"`
	Value   string   `json:"value,omitempty" jsonschema:"value column for comparative and statistical charts"`
	Metrics []string `json:"metrics,omitempty" jsonschema:"metric columns for radar charts"`
}

type listExperimentsInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"only return runs carrying this tag"`
}

type experimentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   string `json:"created_at"`
	Tags        []string `json:"tags,omitempty"`
}

type listExperimentsOutput struct {
	Runs  []experimentSummary `json:"runs"`
	Total int                 `json:"total"`
}

// --- Tool handlers ---

func (s *Server) handleRunAnalytics(_ context.Context, _ *sdkmcp.CallToolRequest, input runAnalyticsInput) (*sdkmcp.CallToolResult, analytics.StepResult, error) {
	res := analytics.Run(analytics.Config{
		Input:   input.Input,
		Output:  input.Output,
		GroupBy: input.GroupBy,
		Metrics: input.Metrics,
	})
	return nil, res, nil
}

func (s *Server) handleRunJudge(ctx context.Context, _ *sdkmcp.CallToolRequest, input runJudgeInput) (*sdkmcp.CallToolResult, analytics.StepResult, error) {
	rows, err := judge.Run(ctx, judge.Config{
		Input:       input.Input,
		Output:      input.Output,
		TemplateDir: input.TemplateDir,
	})
	if err != nil {
		return nil, analytics.StepResult{Error: err.Error()}, nil
	}
	return nil, analytics.StepResult{Success: true, Artifacts: []string{input.Output}, Rows: rows}, nil
}

func (s *Server) handleRunVisualization(ctx context.Context, _ *sdkmcp.CallToolRequest, input runVisualizationInput) (*sdkmcp.CallToolResult, analytics.StepResult, error) {
	res := viz.Run(ctx, viz.Config{
		Input:   input.Input,
		Output:  input.Output,
		Kind:    input.Kind,
		GroupBy: input.GroupBy,
		Hue:     input.Hue,
		Value:   input.Value,
		Metrics: input.Metrics,
	})
	return nil, res, nil
}

func (s *Server) handleListExperiments(_ context.Context, _ *sdkmcp.CallToolRequest, input listExperimentsInput) (*sdkmcp.CallToolResult, listExperimentsOutput, error) {
	if s.Runs == nil {
		return nil, listExperimentsOutput{}, fmt.Errorf("no run store configured")
	}

	var (
		runs []tracker.Run
		err  error
	)
	if input.Tag != "" {
		runs, err = s.Runs.FilterByTag(input.Tag)
	} else {
		runs, err = s.Runs.List()
	}
	if err != nil {
		return nil, listExperimentsOutput{}, fmt.Errorf("list experiments: %w", err)
	}

	out := listExperimentsOutput{Total: len(runs)}
	for _, r := range runs {
		out.Runs = append(out.Runs, experimentSummary{
			ID:          r.ID,
			Name:        r.Name,
			Fingerprint: r.Fingerprint,
			CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
			Tags:        r.Tags,
		})
	}
	return nil, out, nil
}
