package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderCapUsage renders worked hours against a daily cap, e.g.
// [████░░░░]  4.0h / 8h. The bar turns yellow past 75% and red once the
// cap is reached.
func RenderCapUsage(worked, capHours float64, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 0.0
	if capHours > 0 {
		pct = worked / capHours
	}
	pct = min(max(pct, 0), 1)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct >= 1:
		style = StyleRed
	case pct >= 0.75:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %s / %s", style.Render(bar), FormatHours(worked), FormatHours(capHours))
}
