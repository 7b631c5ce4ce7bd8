package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/portcore/internal/adapters/outbound/report"
	"github.com/openkraft/portcore/internal/bootstrap"
)

const reportURIPrefix = "portcore://reports/"

// registerResources registers all portcore MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. portcore://cache - rule cache status
	s.AddResource(
		mcplib.NewResource(
			"portcore://cache",
			"Rule Cache",
			mcplib.WithResourceDescription("Status of the local recommendation rule cache"),
			mcplib.WithMIMEType("application/json"),
		),
		handleCacheResource(projectPath),
	)

	// 2. portcore://history - run summaries
	s.AddResource(
		mcplib.NewResource(
			"portcore://history",
			"Run History",
			mcplib.WithResourceDescription("Summaries of past analyze and run invocations"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)

	// 3. portcore://reports/{phase} - latest report of a phase
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			reportURIPrefix+"{phase}",
			"Solution Report",
			mcplib.WithTemplateDescription("Latest solution report of a phase (analysis or run)"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleReportResource(projectPath),
	)
}

func handleCacheResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		ws, err := bootstrap.Open(projectPath, bootstrap.WithoutPrefetch())
		if err != nil {
			return nil, err
		}
		st, err := ws.Cache.Status()
		if err != nil {
			return nil, fmt.Errorf("reading cache: %w", err)
		}
		return jsonContents(req.Params.URI, st)
	}
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		ws, err := bootstrap.Open(projectPath, bootstrap.WithoutPrefetch())
		if err != nil {
			return nil, err
		}
		entries, err := ws.History.Load(ws.Dir)
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
		return jsonContents(req.Params.URI, entries)
	}
}

func handleReportResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		phase := strings.TrimPrefix(req.Params.URI, reportURIPrefix)
		if phase != "analysis" && phase != "run" {
			return nil, fmt.Errorf("unknown report phase %q (valid: analysis, run)", phase)
		}
		ws, err := bootstrap.Open(projectPath, bootstrap.WithoutPrefetch())
		if err != nil {
			return nil, err
		}
		result, err := report.Load(ws.Dir, phase)
		if err != nil {
			return nil, fmt.Errorf("loading %s report: %w", phase, err)
		}
		return jsonContents(req.Params.URI, result)
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
