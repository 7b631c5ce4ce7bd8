package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/portcore/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderCacheStatus renders the rule cache state.
func RenderCacheStatus(st domain.CacheStatus) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + sectionHeaderStyle.Render("Rule Cache") + "  " + fileStyle.Render(st.Dir) + "\n\n")

	if !st.Exists {
		b.WriteString("    " + warnStyle.Render("●") + " " + dimStyle.Render("not created yet") + "\n")
		return b.String()
	}

	state := passStyle.Render("fresh")
	if st.Expired {
		state = failStyle.Render("expired")
	}
	fmt.Fprintf(&b, "    %s %s\n", padRight("state", 12), state)
	fmt.Fprintf(&b, "    %s %d\n", padRight("entries", 12), st.Entries)
	fmt.Fprintf(&b, "    %s %s\n", padRight("created", 12), dimStyle.Render(st.CreatedAt.Format(time.RFC3339)))
	fmt.Fprintf(&b, "    %s %s\n", padRight("expires", 12), dimStyle.Render(st.ExpiresAt.Format(time.RFC3339)))
	if st.Expired {
		b.WriteString("\n  " + hintStyle.Render("Run `portcore cache reset` or any analysis to refresh.") + "\n")
	}
	return b.String()
}

// RenderIncremental lists recomputed actions per changed file.
func RenderIncremental(files []domain.FileActions) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n",
		sectionHeaderStyle.Render("Incremental"),
		dimStyle.Render(fmt.Sprintf("(%d files)", len(files))),
	)
	for _, f := range files {
		if len(f.Actions) == 0 {
			fmt.Fprintf(&b, "    %s %s\n", faintStyle.Render("○"), fileStyle.Render(f.FilePath))
			continue
		}
		fmt.Fprintf(&b, "    %s %s  %s\n",
			warnStyle.Render("●"),
			f.FilePath,
			dimStyle.Render(fmt.Sprintf("%d actions", len(f.Actions))),
		)
		for _, a := range f.Actions {
			line := "        " + infoTagStyle.Render(a.Type) + " " + a.Name
			if a.Namespace != "" {
				line += "  " + faintStyle.Render(a.Namespace)
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
