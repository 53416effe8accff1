package supervisor

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1).
	Border(lipgloss.Border{Top: "=", Bottom: "="}, true, false)

func banner(w io.Writer, text string) {
	fmt.Fprintln(w, bannerStyle.Render(text))
}
