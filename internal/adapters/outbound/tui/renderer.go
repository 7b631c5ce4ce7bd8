package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"

	"github.com/openkraft/portcore/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	// typeColors groups project types by family.
	typeColors = map[string]lipgloss.Color{
		"VB":  lipgloss.Color("#A78BFA"), // violet
		"WCF": lipgloss.Color("#38BDF8"), // sky
		"Web": lipgloss.Color("#A3E635"), // lime
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	nameStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// HumanizeType splits a project type into words,
// e.g. "WCFConfigBasedService" → "WCF Config Based Service".
func HumanizeType(pt domain.ProjectType) string {
	return strings.Join(camelcase.Split(string(pt)), " ")
}

// RenderSolution formats a solution result. Run results are shown when
// present, analysis results otherwise.
func RenderSolution(result *domain.SolutionResult) string {
	var b strings.Builder

	phase := "Analysis"
	projects := result.AnalysisResults
	if len(result.RunResults) > 0 {
		phase = "Run"
		projects = result.RunResults
	}

	// ── Header ──
	title := headerStyle.Render("portcore")
	subtitle := dimStyle.Render(phase + " · " + displayName(result.SolutionPath))
	meta := faintStyle.Render(shortID(result.RunID, 8) + "  " + shortID(result.CommitHash, 7))
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + meta))
	b.WriteString("\n\n")

	// ── Projects ──
	for _, p := range projects {
		renderProject(&b, p)
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	// ── Totals ──
	actions := 0
	failed := 0
	for _, p := range projects {
		actions += p.Actions.Count()
		if len(p.Errors) > 0 {
			failed++
		}
	}
	fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
		titleStyle.Render("Totals"),
		dimStyle.Render(fmt.Sprintf("%d projects", len(projects))),
		infoTagStyle.Render(fmt.Sprintf("%d rules matched", result.DownloadedFiles.Len())),
		passStyle.Render(fmt.Sprintf("%d actions", actions)),
	)
	if failed > 0 {
		b.WriteString("  " + errorTagStyle.Render(fmt.Sprintf("%d projects reported errors", failed)) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func renderProject(b *strings.Builder, p *domain.ProjectResult) {
	name := nameStyle.Render(padRight(displayName(p.ProjectFile), 28))
	kind := lipgloss.NewStyle().Foreground(typeColor(p.ProjectType)).Render(padRight(HumanizeType(p.ProjectType), 26))
	counts := dimStyle.Render(fmt.Sprintf("%d refs  %d rules  %d actions",
		p.References.Len(), p.DownloadedFiles.Len(), p.Actions.Count()))
	fmt.Fprintf(b, "  %s %s %s\n", name, kind, counts)

	for _, e := range p.Errors {
		fmt.Fprintf(b, "    %s %s\n", errorTagStyle.Render("error"), dimStyle.Render(e))
	}
}

// RenderClassification lists project types keyed by project path, sorted.
func RenderClassification(types map[string]domain.ProjectType) string {
	if len(types) == 0 {
		return "  " + dimStyle.Render("No projects classified.") + "\n"
	}
	paths := make([]string, 0, len(types))
	for p := range types {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Project Types") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")
	for _, p := range paths {
		pt := types[p]
		fmt.Fprintf(&b, "  %s %s %s\n",
			fileStyle.Render(padRight(p, 36)),
			lipgloss.NewStyle().Foreground(typeColor(pt)).Render(HumanizeType(pt)),
			faintStyle.Render("("+string(pt)+")"),
		)
	}
	return b.String()
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := shortID(e.CommitHash, 7)
		ts := e.Timestamp
		if len(ts) > 10 {
			ts = ts[:10]
		}
		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(ts),
			faintStyle.Render(hash),
			titleStyle.Render(fmt.Sprintf("%d projects", e.Projects)),
			dimStyle.Render(fmt.Sprintf("%d actions", e.Actions)),
		)
		if i > 0 {
			diff := e.Actions - entries[i-1].Actions
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + warnStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func typeColor(pt domain.ProjectType) lipgloss.Color {
	words := camelcase.Split(string(pt))
	if len(words) > 0 {
		if c, ok := typeColors[words[0]]; ok {
			return c
		}
	}
	return fg
}

func shortID(id string, n int) string {
	if id == "" {
		return strings.Repeat("·", n)
	}
	if len(id) > n {
		return id[:n]
	}
	return id
}

func displayName(path string) string {
	if path == "" {
		return "(no solution)"
	}
	return filepath.Base(path)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
