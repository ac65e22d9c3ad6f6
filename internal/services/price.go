package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"singapore-family-venues-scraper/internal/models"
)

// PriceInfo is the result of heuristic price extraction from block text.
// A nil Price with the contact display means "unknown": no pattern matched
// and no free/contact cue was found.
type PriceInfo struct {
	Price   *float64 `json:"price"`
	Display string   `json:"price_display"`
	Teaser  string   `json:"price_display_teaser"`
}

var (
	freeCueRe    = regexp.MustCompile(`(?i)(complimentary|free)`)
	contactCueRe = regexp.MustCompile(`(?i)(contact|check website)`)
	numberRe     = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// pricePattern is one candidate price expression; range patterns capture two
// amounts, single patterns capture one. First match wins.
type pricePattern struct {
	re      *regexp.Regexp
	isRange bool
}

var pricePatterns = []pricePattern{
	// Range patterns
	{regexp.MustCompile(`(?:from\s*)?s?\$\s*(\d+(?:\.\d{1,2})?)\s*(?:-|to)\s*s?\$\s*(\d+(?:\.\d{1,2})?)`), true},
	{regexp.MustCompile(`sgd\s*(\d+(?:\.\d{1,2})?)\s*(?:-|to)\s*sgd\s*(\d+(?:\.\d{1,2})?)`), true},

	// Single price patterns
	{regexp.MustCompile(`(?:from\s*)?s?\$\s*(\d+(?:\.\d{1,2})?)`), false}, // $25.00, S$25, $ 25, from $25
	{regexp.MustCompile(`sgd\s*(\d+(?:\.\d{1,2})?)`), false},             // SGD 25.00
	{regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*sgd`), false},             // 25.00 SGD
	{regexp.MustCompile(`price:\s*s?\$\s*(\d+(?:\.\d{1,2})?)`), false},   // Price: $25
	{regexp.MustCompile(`cost:\s*s?\$\s*(\d+(?:\.\d{1,2})?)`), false},    // Cost: $25

	// Special patterns
	{regexp.MustCompile(`complimentary.*(?:guests|members).*?(\d+(?:\.\d{1,2})?)`), false},
	{regexp.MustCompile(`(\d+(?:\.\d{1,2})?).*?(?:per child|per adult|per entry)`), false},
	{regexp.MustCompile(`(\d+)\s*dollars?`), false}, // 25 dollars
}

// ExtractPrice derives pricing fields from free text. It never fails:
// unmatched input degrades to documented sentinel values.
func ExtractPrice(text string) PriceInfo {
	if strings.TrimSpace(text) == "" {
		return contactPriceInfo()
	}

	hasFree := freeCueRe.MatchString(text)
	hasContact := contactCueRe.MatchString(text)

	if hasFree && !hasContact {
		return PriceInfo{
			Price:   floatPtr(0.0),
			Display: models.PriceDisplayFree,
			Teaser:  models.TeaserFree,
		}
	}
	if hasContact {
		return contactPriceInfo()
	}

	clean := strings.ToLower(CollapseWhitespace(text))

	for _, p := range pricePatterns {
		m := p.re.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		if p.isRange {
			minPrice, err1 := strconv.ParseFloat(m[1], 64)
			maxPrice, err2 := strconv.ParseFloat(m[2], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			return PriceInfo{
				Price:   floatPtr(minPrice),
				Display: fmt.Sprintf("S$%.2f - S$%.2f", minPrice, maxPrice),
				Teaser:  teaserFromPrices(minPrice, maxPrice, hasFree),
			}
		}
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return PriceInfo{
			Price:   floatPtr(price),
			Display: fmt.Sprintf("S$%.2f", price),
			Teaser:  teaserFromPrices(price, price, hasFree),
		}
	}

	// Unknown: nothing matched and no cue was present
	return PriceInfo{
		Price:   nil,
		Display: models.PriceDisplayContact,
		Teaser:  models.TeaserCheckWebsite,
	}
}

func contactPriceInfo() PriceInfo {
	return PriceInfo{
		Price:   floatPtr(0.0),
		Display: models.PriceDisplayContact,
		Teaser:  models.TeaserContact,
	}
}

// teaserFromPrices picks the short human-facing price summary
func teaserFromPrices(minPrice, maxPrice float64, hasFree bool) string {
	if hasFree && maxPrice > 0 {
		return models.TeaserFreePlusPaid
	}
	if minPrice == 0.0 && maxPrice == 0.0 {
		return models.TeaserFree
	}
	if minPrice > 0 && minPrice == maxPrice {
		return fmt.Sprintf("From $%.0f", minPrice)
	}
	return models.TeaserCheckWebsite
}

// MergePriceFields folds heuristic extraction into a listing without
// overwriting model-supplied concrete values: a field is replaced only when
// empty or holding the contact-for-pricing sentinel.
func MergePriceFields(listing *models.Listing, text string) {
	info := ExtractPrice(text)

	if listing.Price == nil && info.Price != nil {
		listing.Price = info.Price
	}
	if priceFieldReplaceable(listing.PriceDisplay) && info.Display != "" {
		listing.PriceDisplay = info.Display
	}
	if priceFieldReplaceable(listing.PriceDisplayTeaser) && info.Teaser != "" {
		listing.PriceDisplayTeaser = info.Teaser
	}
}

func priceFieldReplaceable(value string) bool {
	return value == "" || strings.Contains(value, "Please")
}

// EnrichPriceBounds derives is_free, min_price and max_price from the merged
// pricing fields. It degrades to nil bounds on missing or non-numeric input.
func EnrichPriceBounds(listing *models.Listing) {
	listing.IsFree = strings.Contains(strings.ToLower(listing.PriceDisplayTeaser), "free")

	if listing.IsFree {
		listing.MinPrice = floatPtr(0)
	} else if listing.Price != nil {
		listing.MinPrice = floatPtr(*listing.Price)
	} else {
		listing.MinPrice = nil
	}

	listing.MaxPrice = listing.MinPrice
	if nums := numberRe.FindAllString(listing.PriceDisplay, -1); len(nums) > 0 {
		largest := 0.0
		found := false
		for _, n := range nums {
			v, err := strconv.ParseFloat(n, 64)
			if err != nil {
				continue
			}
			if !found || v > largest {
				largest = v
				found = true
			}
		}
		if found {
			listing.MaxPrice = floatPtr(largest)
		}
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
