package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/auth-xyz/process-info/internal/ui"
	"github.com/auth-xyz/process-info/internal/util"
)

// View renders the dashboard. After the program stops the last complete
// frame is left on screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(m.table.Title))
	b.WriteString("\n")

	if m.ticks == 0 {
		b.WriteString(ui.RenderTable(m.table.Columns, nil))
		b.WriteString("\n")
		b.WriteString(PendingStyle.Render(fmt.Sprintf("Sampling %d %s...",
			len(m.targets), util.Pluralize(len(m.targets), "process", "processes"))))
	} else {
		b.WriteString(ui.RenderTable(m.table.Columns, m.table.Rows))
	}
	b.WriteString("\n")

	b.WriteString(m.renderFooter())
	b.WriteString("\n")
	return b.String()
}

// renderFooter shows elapsed time, tick count, and the watch countdown.
func (m Model) renderFooter() string {
	elapsed := m.Elapsed().Truncate(time.Second)
	parts := []string{
		"elapsed " + elapsed.String(),
		fmt.Sprintf("%d %s", m.ticks, util.Pluralize(m.ticks, "tick", "ticks")),
	}

	if m.watch > 0 {
		left := m.watch - m.Elapsed()
		if left < 0 {
			left = 0
		}
		parts = append(parts, left.Round(time.Second).String()+" left")
	}

	if m.ticks > 0 && m.last.Took > 0 {
		parts = append(parts, "sample took "+m.last.Took.Round(10*time.Millisecond).String())
	}

	footer := FooterStyle.Render(strings.Join(parts, " · "))
	if m.stopRequested && !m.quitting {
		footer += " " + StoppingStyle.Render("stopping after this sample...")
	}
	return footer
}
