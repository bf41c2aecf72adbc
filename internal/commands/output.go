package commands

import (
	"github.com/fatih/color"

	"github.com/balkashynov/punch/internal/models"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	accentColor  = color.New(color.FgMagenta, color.Bold)
	mutedColor   = color.New(color.Faint)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

func stateIcon(s models.SessionStatus) string {
	switch s {
	case models.StatusOnBreak:
		return "☕"
	case models.StatusPaused:
		return "⏸️ "
	case models.StatusCompleted:
		return "⏹️ "
	default:
		return "🟢"
	}
}

func stateText(s models.SessionStatus) string {
	switch s {
	case models.StatusOnBreak:
		return "On break"
	case models.StatusPaused:
		return "Paused"
	case models.StatusCompleted:
		return "Clocked out"
	default:
		return "Working"
	}
}
