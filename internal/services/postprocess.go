package services

import (
	"log"
	"strings"

	"singapore-family-venues-scraper/internal/models"
)

const (
	maxSourceImagesPerListing   = 3
	maxFallbackImagesPerListing = 2
)

// PostProcessor merges heuristic field extraction into synthesized listings,
// assigns images and sequential IDs, and deduplicates the page's records.
type PostProcessor struct {
	counter CounterStore
}

// NewPostProcessor creates a PostProcessor drawing IDs from counter
func NewPostProcessor(counter CounterStore) *PostProcessor {
	return &PostProcessor{counter: counter}
}

// Process runs the full post-processing pass over every listing synthesized
// from one page. The caller commits the counter after the run's output has
// been written successfully.
func (p *PostProcessor) Process(raw []models.Listing, pageHTML, pageURL string, fallbackImages []string) []models.Listing {
	listings := make([]models.Listing, 0, len(raw))

	for i := range raw {
		listing := raw[i]

		// Provenance is always the source page, never a link inside a block
		listing.GUID = pageURL
		listing.URL = pageURL

		// Heuristic fields never overwrite concrete model-supplied values
		MergePriceFields(&listing, listing.Source.Text)
		EnrichPriceBounds(&listing)

		// The teaser is a closed phrase set; anything the model improvised
		// collapses to the safe default after is_free has been derived
		if !models.ValidatePriceTeaser(listing.PriceDisplayTeaser) {
			listing.PriceDisplayTeaser = models.TeaserCheckWebsite
		}

		if addressReplaceable(listing.AddressDisplay) {
			addr := ExtractAddress(listing.Source.Text)
			if addr == "" {
				addr = GlobalAddress(pageHTML)
			}
			if addr != "" {
				listing.AddressDisplay = addr
			} else if listing.AddressDisplay == "" {
				listing.AddressDisplay = models.AddressNotAvailable
			}
		}

		if hours := ExtractOperatingHours(listing.Source.Text); hours != "" && listing.DatetimeDisplay == "" {
			listing.DatetimeDisplay = hours
		}

		p.assignImages(&listing, i, fallbackImages)

		listings = append(listings, listing)
	}

	listings = Deduplicate(listings)

	for i := range listings {
		listings[i].ID = p.counter.Next()
	}

	return listings
}

// addressReplaceable reports whether a heuristic address may fill the field:
// only when it is empty or holds the not-available sentinel
func addressReplaceable(value string) bool {
	return value == "" || value == models.AddressNotAvailable
}

// assignImages fills a listing's images: block-local images first, then the
// page fallback pool round-robin by listing index, and normalizes every
// entry to the {url, source_credit} object form.
func (p *PostProcessor) assignImages(listing *models.Listing, index int, fallbackImages []string) {
	credit := listing.Organiser
	if credit == "" {
		credit = listing.VenueName
	}
	if credit == "" {
		credit = "Unknown"
	}

	if len(listing.Images) == 0 {
		switch {
		case len(listing.Source.Images) > 0:
			for _, url := range listing.Source.Images {
				if !models.ValidateImageURL(url) {
					continue
				}
				listing.Images = append(listing.Images, models.Image{URL: url, SourceCredit: credit})
				if len(listing.Images) >= maxSourceImagesPerListing {
					break
				}
			}
		case len(fallbackImages) > 0:
			start := index % len(fallbackImages)
			end := min(start+maxFallbackImagesPerListing, len(fallbackImages))
			selected := append([]string(nil), fallbackImages[start:end]...)
			if len(selected) < maxFallbackImagesPerListing && len(fallbackImages) > 1 {
				selected = append(selected, fallbackImages[:maxFallbackImagesPerListing-len(selected)]...)
			}
			for _, url := range selected {
				listing.Images = append(listing.Images, models.Image{URL: url, SourceCredit: credit})
			}
		}
		if listing.Images == nil {
			listing.Images = []models.Image{}
		}
		return
	}

	// Normalize entries the model echoed back: bare strings decode to
	// url-only images, and any missing credit gets the organiser
	normalized := make([]models.Image, 0, len(listing.Images))
	for _, img := range listing.Images {
		if !models.ValidateImageURL(img.URL) {
			continue
		}
		if img.SourceCredit == "" {
			img.SourceCredit = credit
		}
		normalized = append(normalized, img)
	}
	listing.Images = normalized
}

// Deduplicate drops malformed and repeated listings. A listing is dropped
// when it has no title, when its (venue_name, title) pair was already seen,
// or when its substantial title (>10 chars) was already seen from a
// different record.
func Deduplicate(listings []models.Listing) []models.Listing {
	seenVenues := make(map[[2]string]bool)
	seenTitles := make(map[string]bool)

	var valid []models.Listing
	for _, listing := range listings {
		title := strings.ToLower(models.SafeStrip(listing.Title))
		venueName := strings.ToLower(models.SafeStrip(listing.VenueName))

		if title == "" {
			continue
		}

		venueTitleKey := [2]string{venueName, title}
		if seenVenues[venueTitleKey] {
			log.Printf("[debug] skipping duplicate venue: %s - %s", venueName, title)
			continue
		}
		if len(title) > 10 && seenTitles[title] {
			log.Printf("[debug] skipping duplicate title: %s", title)
			continue
		}

		if venueName != "" {
			seenVenues[venueTitleKey] = true
		}
		if len(title) > 10 {
			seenTitles[title] = true
		}

		valid = append(valid, listing)
	}
	return valid
}
