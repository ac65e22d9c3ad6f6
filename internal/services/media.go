package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"singapore-family-venues-scraper/internal/models"
)

var slugRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// slugify turns a venue name into a safe filename fragment
func slugify(text string) string {
	if text == "" {
		return "unknown"
	}
	s := slugRe.ReplaceAllString(text, "_")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// MediaDownloader side-loads listing images to local JPEG files
type MediaDownloader struct {
	httpClient *http.Client
	quality    int
}

// NewMediaDownloader creates a downloader with a bounded per-image timeout
func NewMediaDownloader() *MediaDownloader {
	return &MediaDownloader{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		quality:    85,
	}
}

// DownloadImages fetches every listing image into outputDir, re-encoding to
// JPEG and recording the local path and filename on each image entry. Any
// single image failure is logged and skipped; it never aborts the run.
func (m *MediaDownloader) DownloadImages(listings []models.Listing, outputDir string) int {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Printf("[debug] cannot create image directory %s: %v", outputDir, err)
		return 0
	}

	downloaded := 0
	for li := range listings {
		listing := &listings[li]
		venue := listing.VenueName
		if venue == "" {
			venue = listing.Title
		}

		for ii := range listing.Images {
			img := &listing.Images[ii]
			if img.URL == "" {
				continue
			}

			img.Filename = fmt.Sprintf("%s_%d.jpg", slugify(venue), ii+1)
			path := filepath.Join(outputDir, img.Filename)

			if _, err := os.Stat(path); err == nil {
				img.LocalPath = path
				continue
			}

			if err := m.fetchAndEncode(img.URL, path); err != nil {
				log.Printf("[debug] failed to download image for listing %d from %s: %v", listing.ID, img.URL, err)
				continue
			}
			img.LocalPath = path
			downloaded++
		}
	}

	log.Printf("[debug] total images downloaded: %d", downloaded)
	return downloaded
}

// fetchAndEncode downloads one image and writes it as JPEG
func (m *MediaDownloader) fetchAndEncode(url, path string) error {
	resp, err := m.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading image body: %w", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, decoded, &jpeg.Options{Quality: m.quality}); err != nil {
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	return nil
}
