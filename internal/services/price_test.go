package services

import (
	"testing"

	"singapore-family-venues-scraper/internal/models"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantPrice   *float64
		wantDisplay string
		wantTeaser  string
	}{
		{
			name:        "empty text falls back to contact",
			text:        "",
			wantPrice:   floatPtr(0),
			wantDisplay: models.PriceDisplayContact,
			wantTeaser:  models.TeaserContact,
		},
		{
			name:        "free cue without contact cue",
			text:        "Free admission for all",
			wantPrice:   floatPtr(0),
			wantDisplay: models.PriceDisplayFree,
			wantTeaser:  models.TeaserFree,
		},
		{
			name:        "free cue wins over prices in the same text",
			text:        "Free entry, paid workshops from $20",
			wantPrice:   floatPtr(0),
			wantDisplay: models.PriceDisplayFree,
			wantTeaser:  models.TeaserFree,
		},
		{
			name:        "contact cue",
			text:        "Please contact us for rates",
			wantPrice:   floatPtr(0),
			wantDisplay: models.PriceDisplayContact,
			wantTeaser:  models.TeaserContact,
		},
		{
			name:        "single dollar price",
			text:        "Admission $15 per child",
			wantPrice:   floatPtr(15),
			wantDisplay: "S$15.00",
			wantTeaser:  "From $15",
		},
		{
			name:        "decimal price keeps cents in display",
			text:        "Tickets from $12.50",
			wantPrice:   floatPtr(12.5),
			wantDisplay: "S$12.50",
			wantTeaser:  "From $12",
		},
		{
			name:        "sgd prefix",
			text:        "Tickets SGD 18",
			wantPrice:   floatPtr(18),
			wantDisplay: "S$18.00",
			wantTeaser:  "From $18",
		},
		{
			name:        "price range",
			text:        "Passes from S$10 to S$25",
			wantPrice:   floatPtr(10),
			wantDisplay: "S$10.00 - S$25.00",
			wantTeaser:  models.TeaserCheckWebsite,
		},
		{
			name:        "spelled out dollars",
			text:        "Entry costs 5 dollars",
			wantPrice:   floatPtr(5),
			wantDisplay: "S$5.00",
			wantTeaser:  "From $5",
		},
		{
			name:        "no price and no cue is unknown",
			text:        "Lovely playground for toddlers",
			wantPrice:   nil,
			wantDisplay: models.PriceDisplayContact,
			wantTeaser:  models.TeaserCheckWebsite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPrice(tt.text)

			if (got.Price == nil) != (tt.wantPrice == nil) {
				t.Fatalf("Price = %v, want %v", got.Price, tt.wantPrice)
			}
			if got.Price != nil && *got.Price != *tt.wantPrice {
				t.Errorf("Price = %v, want %v", *got.Price, *tt.wantPrice)
			}
			if got.Display != tt.wantDisplay {
				t.Errorf("Display = %q, want %q", got.Display, tt.wantDisplay)
			}
			if got.Teaser != tt.wantTeaser {
				t.Errorf("Teaser = %q, want %q", got.Teaser, tt.wantTeaser)
			}
			if !models.ValidatePriceTeaser(got.Teaser) {
				t.Errorf("Teaser %q is not a valid teaser phrase", got.Teaser)
			}
		})
	}
}

func TestMergePriceFields(t *testing.T) {
	t.Run("fills empty and sentinel fields", func(t *testing.T) {
		listing := models.Listing{PriceDisplay: models.PriceDisplayContact}
		MergePriceFields(&listing, "Admission $15 per child")

		if listing.Price == nil || *listing.Price != 15 {
			t.Errorf("Price = %v, want 15", listing.Price)
		}
		if listing.PriceDisplay != "S$15.00" {
			t.Errorf("PriceDisplay = %q, want S$15.00", listing.PriceDisplay)
		}
		if listing.PriceDisplayTeaser != "From $15" {
			t.Errorf("PriceDisplayTeaser = %q, want From $15", listing.PriceDisplayTeaser)
		}
	})

	t.Run("keeps concrete model values", func(t *testing.T) {
		listing := models.Listing{
			Price:              floatPtr(20),
			PriceDisplay:       "S$20.00",
			PriceDisplayTeaser: "From $20",
		}
		MergePriceFields(&listing, "Free admission for all")

		if *listing.Price != 20 {
			t.Errorf("Price = %v, want 20", *listing.Price)
		}
		if listing.PriceDisplay != "S$20.00" {
			t.Errorf("PriceDisplay = %q, want S$20.00", listing.PriceDisplay)
		}
	})
}

func TestEnrichPriceBounds(t *testing.T) {
	tests := []struct {
		name       string
		listing    models.Listing
		wantIsFree bool
		wantMin    *float64
		wantMax    *float64
	}{
		{
			name:       "free listing",
			listing:    models.Listing{Price: floatPtr(0), PriceDisplay: models.PriceDisplayFree, PriceDisplayTeaser: models.TeaserFree},
			wantIsFree: true,
			wantMin:    floatPtr(0),
			wantMax:    floatPtr(0),
		},
		{
			name:       "single price",
			listing:    models.Listing{Price: floatPtr(15), PriceDisplay: "S$15.00", PriceDisplayTeaser: "From $15"},
			wantIsFree: false,
			wantMin:    floatPtr(15),
			wantMax:    floatPtr(15),
		},
		{
			name:       "range takes max from display",
			listing:    models.Listing{Price: floatPtr(10), PriceDisplay: "S$10.00 - S$25.00", PriceDisplayTeaser: models.TeaserCheckWebsite},
			wantIsFree: false,
			wantMin:    floatPtr(10),
			wantMax:    floatPtr(25),
		},
		{
			name:       "unknown price",
			listing:    models.Listing{PriceDisplay: models.PriceDisplayContact, PriceDisplayTeaser: models.TeaserCheckWebsite},
			wantIsFree: false,
			wantMin:    nil,
			wantMax:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := tt.listing
			EnrichPriceBounds(&listing)

			if listing.IsFree != tt.wantIsFree {
				t.Errorf("IsFree = %v, want %v", listing.IsFree, tt.wantIsFree)
			}
			checkBound(t, "MinPrice", listing.MinPrice, tt.wantMin)
			checkBound(t, "MaxPrice", listing.MaxPrice, tt.wantMax)
		})
	}
}

func checkBound(t *testing.T, field string, got, want *float64) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Errorf("%s = %v, want %v", field, got, want)
		return
	}
	if got != nil && *got != *want {
		t.Errorf("%s = %v, want %v", field, *got, *want)
	}
}
