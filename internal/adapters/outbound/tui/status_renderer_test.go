package tui_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openkraft/portcore/internal/adapters/outbound/tui"
	"github.com/openkraft/portcore/internal/domain"
)

func TestRenderCacheStatus(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	output := tui.RenderCacheStatus(domain.CacheStatus{
		Dir: "/tmp/rules", Exists: true, Entries: 12,
		CreatedAt: created, ExpiresAt: created.Add(24 * time.Hour), Expired: true,
	})
	assert.Contains(t, output, "/tmp/rules")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "expired")
	assert.Contains(t, output, "2026-03-02T00:00:00Z")

	assert.Contains(t, tui.RenderCacheStatus(domain.CacheStatus{Dir: "/x"}), "not created yet")
}

func TestRenderIncremental(t *testing.T) {
	output := tui.RenderIncremental([]domain.FileActions{
		{FilePath: "Home.cs", Actions: []domain.Action{{Name: "Microsoft.AspNetCore.Mvc", Type: "ReplaceNamespace", Namespace: "System.Web.Mvc"}}},
		{FilePath: "Util.cs"},
	})
	assert.Contains(t, output, "(2 files)")
	assert.Contains(t, output, "ReplaceNamespace")
	assert.Contains(t, output, "System.Web.Mvc")
	assert.Contains(t, output, "Util.cs")
}
