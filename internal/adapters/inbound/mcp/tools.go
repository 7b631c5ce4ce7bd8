package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/portcore/internal/bootstrap"
	"github.com/openkraft/portcore/internal/domain"
)

// registerTools registers all portcore MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. portcore_classify
	s.AddTool(
		mcplib.NewTool("portcore_classify",
			mcplib.WithDescription("Returns the project type of every analyzed project as JSON, keyed by project path"),
		),
		handleClassify(projectPath),
	)

	// 2. portcore_analyze
	s.AddTool(
		mcplib.NewTool("portcore_analyze",
			mcplib.WithDescription("Classifies every project, fetches its recommendation rules and returns the proposed porting actions"),
			mcplib.WithBoolean("run", mcplib.Description("Also hand the proposed actions to the rewrite engine")),
		),
		handleAnalyze(projectPath),
	)

	// 3. portcore_incremental
	s.AddTool(
		mcplib.NewTool("portcore_incremental",
			mcplib.WithDescription("Recomputes porting actions for changed files using the rules already cached"),
			mcplib.WithString("files", mcplib.Description("Comma-separated changed file paths as they appear in the analysis")),
			mcplib.WithBoolean("git", mcplib.Description("Add files changed in the git working tree")),
		),
		handleIncremental(projectPath),
	)

	// 4. portcore_cache_status
	s.AddTool(
		mcplib.NewTool("portcore_cache_status",
			mcplib.WithDescription("Returns the rule cache directory, creation time, expiry and entry count"),
		),
		handleCacheStatus(projectPath),
	)
}

func handleClassify(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		ws, err := bootstrap.Open(projectPath, bootstrap.WithoutPrefetch())
		if err != nil {
			return errorResult(err.Error()), nil
		}
		projects, err := ws.LoadAnalysis()
		if err != nil {
			return errorResult(err.Error()), nil
		}
		vectors, err := ws.Detector.DetectMany(ws.Context(ctx), projects)
		if err != nil {
			return errorResult(fmt.Sprintf("detecting features: %v", err)), nil
		}
		types := make(map[string]domain.ProjectType, len(vectors))
		for path, v := range vectors {
			types[path] = domain.Classify(v)
		}
		return jsonResult(types)
	}
}

func handleAnalyze(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		ws, err := bootstrap.Open(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		ctx = ws.Context(ctx)

		sol, err := ws.PrepareSolution(ctx)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		var result *domain.SolutionResult
		if run, _ := request.GetArguments()["run"].(bool); run {
			result, err = sol.Run(ctx)
		} else {
			result, err = sol.AnalysisRun(ctx)
		}
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		ws.Record(result)
		return jsonResult(result)
	}
}

func handleIncremental(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		ws, err := bootstrap.Open(projectPath, bootstrap.WithoutPrefetch())
		if err != nil {
			return errorResult(err.Error()), nil
		}
		ctx = ws.Context(ctx)

		args := request.GetArguments()
		filesStr, _ := args["files"].(string)
		files := splitCSV(filesStr)
		if useGit, _ := args["git"].(bool); useGit {
			changed, err := ws.Git.ChangedFiles(ws.Dir)
			if err != nil {
				return errorResult(fmt.Sprintf("listing changed files: %v", err)), nil
			}
			files = append(files, changed...)
		}
		if len(files) == 0 {
			return errorResult("no changed files (pass files or set git)"), nil
		}

		if _, err := ws.LoadAnalysis(); err != nil {
			return errorResult(err.Error()), nil
		}
		out, err := ws.IncrementalSolution().RunIncremental(ctx, ws.RuleSet(ctx), files)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(out)
	}
}

func handleCacheStatus(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		ws, err := bootstrap.Open(projectPath, bootstrap.WithoutPrefetch())
		if err != nil {
			return errorResult(err.Error()), nil
		}
		st, err := ws.Cache.Status()
		if err != nil {
			return errorResult(fmt.Sprintf("reading cache: %v", err)), nil
		}
		return jsonResult(st)
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// jsonResult marshals v as indented JSON into a text tool result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
