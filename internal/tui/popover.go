package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tormodhaugland/lastimport/internal/model"
	"github.com/tormodhaugland/lastimport/internal/notify"
	"github.com/tormodhaugland/lastimport/internal/screen"
)

var (
	popoverStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1)
	popoverTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	indicatorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	noticeStyles = map[notify.Level]lipgloss.Style{
		notify.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
		notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
	noticeIcons = map[notify.Level]string{
		notify.LevelSuccess: "✓",
		notify.LevelInfo:    "•",
		notify.LevelError:   "✗",
	}
)

// renderPopover lists the selected stock's indicators as "name: value"
// lines. limit caps the listed entries; zero or less shows all of them.
func renderPopover(sel *screen.DetailSelection, limit int) string {
	st, ok := sel.Stock()
	if !ok {
		return ""
	}
	return popoverStyle.Render(popoverBody(st.Code, sel.IndicatorsForDisplay(), limit))
}

func popoverBody(code string, indicators model.Indicators, limit int) string {
	var sb strings.Builder
	sb.WriteString(popoverTitleStyle.Render(code + " indicators"))

	if indicators.Len() == 0 {
		sb.WriteString("\n" + indicatorStyle.Render("No indicators"))
		return sb.String()
	}

	shown := indicators
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, ind := range shown {
		sb.WriteString(fmt.Sprintf("\n%s: %s", ind.Name, model.FormatValue(ind.Value)))
	}
	if hidden := indicators.Len() - len(shown); hidden > 0 {
		sb.WriteString("\n" + indicatorStyle.Render(fmt.Sprintf("… %d more", hidden)))
	}
	sb.WriteString("\n" + indicatorStyle.Render("esc: close"))
	return sb.String()
}

func renderNotice(n notify.Notification) string {
	style, ok := noticeStyles[n.Level]
	if !ok {
		style = noticeStyles[notify.LevelInfo]
	}
	icon := noticeIcons[n.Level]
	return style.Render(strings.TrimSpace(icon + " " + n.Message))
}
