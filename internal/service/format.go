package service

import (
	"fmt"
	"strings"
)

// formatINR renders an amount as Indian rupees with Indian digit grouping:
// the last three integer digits form one group, every group before that has
// two digits (e.g. 1234567.50 -> ₹12,34,567.50).
func formatINR(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	if len(intPart) > 3 {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		intPart = strings.Join(append(groups, tail), ",")
	}

	out := "₹" + intPart + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}
