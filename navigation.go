package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"pinboard/internal/geom"
)

// handlePan scrolls the board. Keys name the direction the view moves, so
// content slides the other way.
func (m model) handlePan(key string, speed int) tea.Model {
	dx := float64(speed*panCells) * m.cfg.CellWidth
	dy := float64(speed*panCells) * m.cfg.CellHeight / 2
	switch key {
	case "h", "left", "H", "shift+left":
		m.engine.Pan(geom.V(dx, 0))
	case "l", "right", "L", "shift+right":
		m.engine.Pan(geom.V(-dx, 0))
	case "k", "up", "K", "shift+up":
		m.engine.Pan(geom.V(0, dy))
	case "j", "down", "J", "shift+down":
		m.engine.Pan(geom.V(0, -dy))
	}
	return m
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}
