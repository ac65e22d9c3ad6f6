package models

import (
	"strings"

	"github.com/google/uuid"
)

// Price display sentinels. PriceDisplayTeaser on a finished listing is always
// one of the teaser constants below (TeaserFromPrice is a prefix form,
// completed with the numeric minimum).
const (
	PriceDisplayFree    = "Free"
	PriceDisplayContact = "Please contact for pricing"

	TeaserFree         = "Free"
	TeaserFreePlusPaid = "Free + Paid options"
	TeaserContact      = "Contact for pricing"
	TeaserCheckWebsite = "Check website for pricing"
	TeaserFromPrice    = "From $"

	// AddressNotAvailable is rendered when no address could be extracted
	AddressNotAvailable = "Not Available"
)

// NewRunID creates a unique identifier for one scraping run
func NewRunID() string {
	return "run_" + uuid.NewString()[:8]
}

// NewExtractionID creates a unique identifier for one synthesizer call
func NewExtractionID() string {
	return "ext_" + uuid.NewString()[:8]
}

// ValidatePriceTeaser checks that a teaser belongs to the closed phrase set
func ValidatePriceTeaser(teaser string) bool {
	switch teaser {
	case TeaserFree, TeaserFreePlusPaid, TeaserContact, TeaserCheckWebsite:
		return true
	}
	// "From $12" style: prefix plus digits
	if strings.HasPrefix(teaser, TeaserFromPrice) && len(teaser) > len(TeaserFromPrice) {
		for _, r := range teaser[len(TeaserFromPrice):] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// IsValidURL performs basic URL validation
func IsValidURL(url string) bool {
	if url == "" {
		return false
	}
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// ValidateImageURL performs enhanced URL validation for images
func ValidateImageURL(url string) bool {
	if !IsValidURL(url) {
		return false
	}

	imageExtensions := []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}
	urlLower := strings.ToLower(url)

	for _, ext := range imageExtensions {
		if strings.Contains(urlLower, ext) {
			return true
		}
	}

	// Allow URLs that might have query parameters or no extension (many CDNs)
	return true
}

// SafeStrip trims a string, treating the zero value as empty
func SafeStrip(value string) string {
	return strings.TrimSpace(value)
}
