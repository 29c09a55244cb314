// Package views contains the Bubble Tea views: the project list, the
// per-project surface, and its three task projections (list, board,
// timeline). All task mutations go through the shared dispatcher; each
// projection only renders the grouped collection and emits requests for
// the modal flows the project surface owns.
package views

import (
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/models"
	"taskdeck/internal/projection"
)

// taskProjection is what the project surface needs from a projection:
// give it the grouped tasks and a viewport, let it handle keys.
type taskProjection interface {
	SetSize(width, height int)
	SetGroups(groups []projection.SectionGroup)
	Update(msg tea.KeyMsg) tea.Cmd
	View() string
	// Capturing reports whether the projection wants raw keys (inline
	// edit, active drag) before any global binding applies.
	Capturing() bool
}

// Requests emitted by projections for flows that need a modal (forms
// and delete confirmations), which live once on the project surface.
type newTaskRequested struct{ SectionID string }

type newSectionRequested struct{}

type deleteTaskRequested struct{ Task models.Task }

type deleteSectionRequested struct{ Section models.Section }

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func request(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
