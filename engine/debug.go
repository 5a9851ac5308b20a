package engine

import (
	"fmt"

	"github.com/pterm/pterm"
)

// DumpChart renders a chart's item sets as a colored listing, meant for
// interactive debugging sessions rather than the trace log, and writes
// directly via pterm.
func DumpChart(chart *Chart) {
	for i, S := range chart.States {
		pterm.DefaultSection.Printf("state %d", i)
		items := S.Items()
		if len(items) == 0 {
			pterm.Println(pterm.Gray("  (empty)"))
			continue
		}
		lines := make([]string, len(items))
		for j, it := range items {
			marker := ""
			if it.AtEnd() {
				marker = " ✓"
			}
			lines[j] = fmt.Sprintf("  %s%s", it.String(), marker)
		}
		pterm.Println(pterm.DefaultBasicText.Sprint(joinLines(lines)))
	}
}

func joinLines(lines []string) string {
	s := ""
	for i, l := range lines {
		if i > 0 {
			s += "\n"
		}
		s += l
	}
	return s
}
