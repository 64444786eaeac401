package common

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatAmount formats a wallet amount with thousand separators and at most two decimals
func FormatAmount(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	whole, frac := cents/100, cents%100

	str := fmt.Sprintf("%d", whole)
	n := len(str)
	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	if frac != 0 {
		fmt.Fprintf(&result, ".%02d", frac)
	}
	return result.String()
}

// FormatPercent formats a probability as a whole percentage
func FormatPercent(probability float64) string {
	return fmt.Sprintf("%.0f%%", probability*100)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// Truncate shortens s to max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(runes[:max-1]) + "…"
}
