package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderSpend renders spend against budget as a bar like [████░░░░] 45%.
// Green below 66%, yellow to 100%, red on overrun. The bar caps at full
// width; the percentage does not. A zero budget renders "n/a".
func RenderSpend(spent, budget int64, width int) string {
	if width < 2 {
		width = 2
	}
	if budget <= 0 {
		return fmt.Sprintf("[%s] n/a", StyleDim.Render(strings.Repeat(emptyBlock, width)))
	}

	pct := float64(spent) / float64(budget)
	if pct < 0 {
		pct = 0
	}
	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct > 1:
		style = StyleRed
	case pct >= 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}
