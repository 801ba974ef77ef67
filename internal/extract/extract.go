// Package extract turns free-form chat text into structured product
// attributes. Extraction is heuristic: it is tuned to the narrow vocabulary
// of the warehouse groups (garment sizes, a short color/brand list,
// Colombian peso prices), not to arbitrary text. Every function here is
// pure and total — unknown fields come back empty, never as an error.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Size band accepted as a garment or shoe size, inclusive.
const (
	MinSize = 20
	MaxSize = 50
)

// Info is the structured extraction result. Absent fields are empty.
type Info struct {
	Sizes       []string
	Color       string
	Brand       string
	ProductType string
	IsReturn    bool
	Price       string
	RawText     string
}

// brands is the closed brand vocabulary, matched anywhere in the text.
var brands = []string{
	"nike", "adidas", "new balance", "reebok", "puma",
	"converse", "vans", "jordan", "under armour",
}

// productTypes is the closed garment-noun vocabulary.
var productTypes = []string{
	"pantalon", "pantalón", "jean", "blusa", "camisa", "camiseta",
	"short", "bermuda", "falda", "vestido", "chaqueta",
}

// sizePatterns are applied in order and all matches of all patterns are
// collected; the range filter and dedup happen afterwards.
var sizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`talla\s+(\d{1,2}(?:\.\d)?)`),
	regexp.MustCompile(`t\.?\s*(\d{1,2}(?:\.\d)?)`),
	regexp.MustCompile(`\b(\d{1,2}(?:\.\d)?)\s*(?:y|,|-|&|/)\s*(\d{1,2}(?:\.\d)?)`),
	regexp.MustCompile(`\b(\d{1,2}(?:\.\d)?)\b`),
}

// colorMatchers are tried in order; the first capture wins.
var colorMatchers = []*regexp.Regexp{
	regexp.MustCompile(`color\s+(\w+(?:\s+\w+)?)`),
	regexp.MustCompile(`\b(rojo|roja|azul|verde|amarillo|negro|blanco|gris|rosa|morado|naranja|beige|marrón|café|marron)\b`),
	regexp.MustCompile(`(\w+)\s+(?:talla|t\.?|tamaño)`),
	regexp.MustCompile(`talla.*?\b(\w+)\b`),
}

var returnRE = regexp.MustCompile(`(?i)devuelto|devoluci[oó]n|regresa|retorna`)

// Extract parses free text into structured attributes. Fields are extracted
// independently: a token may count as a size and still appear inside a price
// context.
func Extract(text string) Info {
	lower := strings.ToLower(text)

	info := Info{
		Sizes:       extractSizes(lower),
		Color:       firstMatch(colorMatchers, lower),
		Brand:       firstContained(brands, lower),
		ProductType: firstContained(productTypes, lower),
		IsReturn:    returnRE.MatchString(lower),
		RawText:     text,
	}
	if price, ok := Price(lower); ok {
		info.Price = price
	}
	return info
}

// extractSizes collects every numeric token matched by the size patterns,
// keeps the values inside the valid size band, and returns them
// deduplicated in ascending numeric order.
func extractSizes(lower string) []string {
	seen := map[string]bool{}
	var sizes []string

	add := func(tok string) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || v < MinSize || v > MaxSize {
			return
		}
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !seen[s] {
			seen[s] = true
			sizes = append(sizes, s)
		}
	}

	for _, re := range sizePatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			for _, tok := range m[1:] {
				if tok != "" {
					add(tok)
				}
			}
		}
	}

	sort.Slice(sizes, func(i, j int) bool {
		a, _ := strconv.ParseFloat(sizes[i], 64)
		b, _ := strconv.ParseFloat(sizes[j], 64)
		return a < b
	})
	return sizes
}

// firstMatch returns the first capture of the first matcher that matches.
func firstMatch(matchers []*regexp.Regexp, lower string) string {
	for _, re := range matchers {
		if m := re.FindStringSubmatch(lower); m != nil && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// firstContained returns the first vocabulary term found anywhere in the text.
func firstContained(vocab []string, lower string) string {
	for _, term := range vocab {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}
