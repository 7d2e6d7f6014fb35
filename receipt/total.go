package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountPattern = regexp.MustCompile(`([$€£¥₩]\s*)?(\d{1,3}(?:,\d{3})+|\d+)(\.\d{1,2})?(\s*원)?`)

	totalLabels = []string{
		"grand total", "total due", "amount due", "balance due", "total",
		"합계", "총액", "총 금액", "총금액", "결제금액", "결제 금액", "받을금액",
	}
	excludedLabels = []string{"subtotal", "sub total", "sub-total", "tax", "소계", "부가세", "savings", "change", "거스름"}
)

type amount struct {
	value    decimal.Decimal
	monetary bool
}

// ExtractTotal finds the receipt total in OCR text. Amounts on lines labelled
// as a total win, the largest one if there are several; a label with no
// amount takes the first amount on the next line. Without any labelled line
// the largest amount that looks like money (decimal cents, thousands
// separators or a currency mark) is used.
func ExtractTotal(text string) (decimal.Decimal, bool) {
	lines := strings.Split(text, "\n")
	var labelled []decimal.Decimal
	for i, line := range lines {
		lower := strings.ToLower(line)
		if !hasLabel(lower, totalLabels) || hasLabel(lower, excludedLabels) {
			continue
		}
		found := amounts(line)
		if len(found) == 0 && i+1 < len(lines) {
			found = amounts(lines[i+1])
			if len(found) > 0 {
				found = found[:1]
			}
		}
		if len(found) > 0 {
			labelled = append(labelled, found[len(found)-1].value)
		}
	}
	if len(labelled) > 0 {
		return maxOf(labelled), true
	}

	var money []decimal.Decimal
	for _, a := range amounts(text) {
		if a.monetary {
			money = append(money, a.value)
		}
	}
	if len(money) == 0 {
		return decimal.Decimal{}, false
	}
	return maxOf(money), true
}

func hasLabel(lower string, labels []string) bool {
	for _, l := range labels {
		if strings.Contains(lower, l) {
			return true
		}
	}
	return false
}

func amounts(s string) []amount {
	var out []amount
	for _, m := range amountPattern.FindAllStringSubmatch(s, -1) {
		digits := strings.ReplaceAll(m[2], ",", "")
		v, err := decimal.NewFromString(digits + m[3])
		if err != nil {
			continue
		}
		out = append(out, amount{
			value:    v,
			monetary: m[1] != "" || m[3] != "" || m[4] != "" || strings.Contains(m[2], ","),
		})
	}
	return out
}

func maxOf(vals []decimal.Decimal) decimal.Decimal {
	best := vals[0]
	for _, v := range vals[1:] {
		if v.GreaterThan(best) {
			best = v
		}
	}
	return best
}
