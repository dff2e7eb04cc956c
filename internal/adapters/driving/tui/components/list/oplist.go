// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/swapsync/swapsync-cli/internal/adapters/driving/tui/styles"
	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// OperationList displays queued operations in a navigable list.
type OperationList struct {
	title    string
	empty    string
	ops      []domain.PendingOperation
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewOperationList creates a new operation list component.
func NewOperationList(s *styles.Styles, title, empty string) *OperationList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &OperationList{
		title:  title,
		empty:  empty,
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the operation list.
func (l *OperationList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *OperationList) Update(msg tea.Msg) (*OperationList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the operation list.
func (l *OperationList) View() string {
	if len(l.ops) == 0 {
		return l.styles.Muted.Render(l.empty)
	}

	lines := make([]string, 0, len(l.ops)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", l.title, len(l.ops))), "")

	// Each operation takes two lines
	visibleCount := (l.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(l.ops) {
		end = len(l.ops)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderOperation(i, &l.ops[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *OperationList) renderOperation(index int, op *domain.PendingOperation) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	target := op.Resource.String()
	if op.RecordID != 0 {
		target = fmt.Sprintf("%s #%d", op.Resource, op.RecordID)
	}
	head := fmt.Sprintf("%s%-6s %s", indicator, op.Type, target)
	age := formatAge(time.Since(op.Timestamp))

	var headLine string
	if index == l.selected {
		headLine = l.styles.Selected.Render(head + "  " + age)
	} else {
		kind := l.styles.OperationKind(string(op.Type)).Render(fmt.Sprintf("%-6s", op.Type))
		headLine = indicator + kind + l.styles.Normal.Render(" "+target+"  ") + l.styles.Muted.Render(age)
	}

	detail := fmt.Sprintf("    retries %d", op.Retries)
	if op.LastError != "" {
		detail += "  " + op.LastError
	}
	maxLen := l.width - 2
	if maxLen < 20 {
		maxLen = 20
	}
	if len(detail) > maxLen {
		detail = detail[:maxLen-3] + "..."
	}

	detailStyle := l.styles.Muted
	if op.Status == domain.OperationAbandoned {
		detailStyle = l.styles.Warning
	}
	return headLine + "\n" + detailStyle.Render(detail)
}

// formatAge renders a coarse "how long ago" string.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// SetOperations replaces the listed operations, keeping the selection in range.
func (l *OperationList) SetOperations(ops []domain.PendingOperation) {
	l.ops = ops
	if l.selected >= len(ops) {
		l.selected = len(ops) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Operations returns the current operations.
func (l *OperationList) Operations() []domain.PendingOperation {
	return l.ops
}

// Selected returns the index of the selected operation.
func (l *OperationList) Selected() int {
	return l.selected
}

// SelectedOperation returns the currently selected operation, or nil if none.
func (l *OperationList) SelectedOperation() *domain.PendingOperation {
	if len(l.ops) == 0 || l.selected < 0 || l.selected >= len(l.ops) {
		return nil
	}
	return &l.ops[l.selected]
}

// MoveUp moves selection up.
func (l *OperationList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *OperationList) MoveDown() {
	if l.selected < len(l.ops)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *OperationList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of operations.
func (l *OperationList) Count() int {
	return len(l.ops)
}
