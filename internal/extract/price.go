package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Price band accepted as a sale amount, inclusive. The range is what rejects
// size-like numbers and long ids (phone numbers) from being read as prices.
const (
	MinPrice = 50
	MaxPrice = 9000
)

// pricePatterns are the ordered capture patterns for a price token. The
// generic capture comes first; the explicit marker phrases catch prices
// that follow a label.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$?\s*(\d{2,5}(?:\.\d{2})?)\b`),
	regexp.MustCompile(`(?i)(\d{2,5})\s*(?:nequi|daviplata|efectivo|transferencia|pago|vendido)`),
	regexp.MustCompile(`(?i)precio\s*:?\s*\$?\s*(\d{2,5})`),
	regexp.MustCompile(`(?i)venta\s*:?\s*\$?\s*(\d{2,5})`),
	regexp.MustCompile(`(?i)valor\s*:?\s*\$?\s*(\d{2,5})`),
	regexp.MustCompile(`(?i)cobr[oó]\s*:?\s*\$?\s*(\d{2,5})`),
	regexp.MustCompile(`(?i)total\s*:?\s*\$?\s*(\d{2,5})`),
}

var barePriceRE = regexp.MustCompile(`^\$?\s*\d{2,5}\s*$`)

// Price extracts the first price token from text. A captured number is
// accepted only if it falls inside the valid price band; otherwise the next
// pattern is tried. Returns the matched digit string and whether one was
// found.
func Price(text string) (string, bool) {
	for _, re := range pricePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil || m[1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if v >= MinPrice && v <= MaxPrice {
			return m[1], true
		}
	}
	return "", false
}

// IsBarePrice reports whether text is nothing but a price token, for example
// "120", "$ 130" or "140$". The sales channel uses this to log a clean
// "$ N" line instead of the raw message.
func IsBarePrice(text string) bool {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return false
	}
	if barePriceRE.MatchString(clean) {
		return true
	}

	digits := onlyDigits(clean)
	if len(digits) < 2 || len(digits) > 5 {
		return false
	}
	compact := strings.Join(strings.Fields(clean), "")
	return compact == digits || compact == digits+"$" || compact == "$"+digits
}

// onlyDigits extracts decimal digits from a string.
func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
