package saleslog

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Price band accepted as a sale, inclusive.
const (
	minPrice = 50
	maxPrice = 9000
)

// Size band excluded from price detection so a garment size in a sale
// message is not double-counted as its price. Narrower than the [20, 50]
// size band the extractor uses; the two bands are independent business
// constants and are not unified.
const (
	minExcludedSize = 35
	maxExcludedSize = 46
)

// nonSaleMarkers disqualify a line regardless of any embedded numbers:
// system echoes, file registrations and bot commands.
var nonSaleMarkers = []string{
	"[Archivo guardado",
	"[Venta - Archivo",
	"[Foto enviada]",
	"/total",
	"/status",
	"/groupid",
	"/myid",
	"/totalmes",
	"/ultimas",
	"/ayudatotal",
}

// lineRE is the fixed log line grammar: DATE TIME ACTOR: MESSAGE.
var lineRE = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (\d{1,2}:\d{2}:\d{2}) (.+?): (.+)$`)

var numberRE = regexp.MustCompile(`\d+`)

// Sale is one accepted sale line, in file order.
type Sale struct {
	Date    string `json:"fecha"`
	Time    string `json:"hora"`
	Actor   string `json:"usuario"`
	Message string `json:"mensaje"`
	Price   int    `json:"precio"`
}

// Summary is the aggregation result for one day.
type Summary struct {
	Date  string `json:"fecha"`
	Total int    `json:"total"`
	Count int    `json:"cantidad"`
	Sales []Sale `json:"ventas"`
}

// ComputeTotal re-parses the whole daily log for a group and returns the
// verified sales total. It is idempotent and side-effect free: repeated
// calls against an unchanged log return identical results. A missing log
// file means a day with no sales, not an error.
func (l *Log) ComputeTotal(group, date string) (*Summary, error) {
	summary := &Summary{Date: date}

	f, err := os.Open(l.Path(group, date))
	if os.IsNotExist(err) {
		return summary, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening sales log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		price, parts := linePrice(line)
		if price == 0 {
			continue
		}

		summary.Total += price
		summary.Count++
		summary.Sales = append(summary.Sales, Sale{
			Date:    parts[1],
			Time:    parts[2],
			Actor:   parts[3],
			Message: parts[4],
			Price:   price,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading sales log: %w", err)
	}
	return summary, nil
}

// LastSales returns the last n accepted sales of the day, newest first.
func (l *Log) LastSales(group, date string, n int) ([]Sale, error) {
	summary, err := l.ComputeTotal(group, date)
	if err != nil {
		return nil, err
	}

	sales := summary.Sales
	if len(sales) > n {
		sales = sales[len(sales)-n:]
	}

	// Reverse into newest-first order.
	out := make([]Sale, 0, len(sales))
	for i := len(sales) - 1; i >= 0; i-- {
		out = append(out, sales[i])
	}
	return out, nil
}

// linePrice classifies one log line. It returns the accepted price and the
// parsed line segments, or price 0 when the line is not a sale: a non-sale
// marker, a line outside the log grammar, or a message with no qualifying
// number. The first number in the price band that is not in the excluded
// size band wins.
func linePrice(line string) (int, []string) {
	for _, marker := range nonSaleMarkers {
		if strings.Contains(line, marker) {
			return 0, nil
		}
	}

	parts := lineRE.FindStringSubmatch(line)
	if parts == nil {
		return 0, nil
	}

	for _, tok := range numberRE.FindAllString(parts[4], -1) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if n < minPrice || n > maxPrice {
			continue
		}
		if n >= minExcludedSize && n <= maxExcludedSize {
			continue
		}
		return n, parts
	}
	return 0, nil
}
