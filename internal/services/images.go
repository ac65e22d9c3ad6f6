package services

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxImagesPerBlock = 5

var (
	cdnDimensionsRe = regexp.MustCompile(`w_\d+,h_\d+`)
	cdnBlurRe       = regexp.MustCompile(`,blur_\d+`)
	cdnQualityRe    = regexp.MustCompile(`q_\d+`)
	unsplashSizeRe  = regexp.MustCompile(`w=\d+&h=\d+`)
	backgroundImgRe = regexp.MustCompile(`(?i)background-image:\s*url\(["']?(.*?)["']?\)`)
)

// UpgradeImageURL rewrites known CDN URL patterns to remove blur and
// low-resolution parameters. Unknown hosts pass through unchanged. The
// rewrite is idempotent.
func UpgradeImageURL(url string) string {
	switch {
	case strings.Contains(url, "wixstatic.com") && strings.Contains(url, "/v1/fill/"):
		url = cdnDimensionsRe.ReplaceAllString(url, "w_2000,h_2000")
		url = cdnBlurRe.ReplaceAllString(url, "")
		url = cdnQualityRe.ReplaceAllString(url, "q_100")
	case strings.Contains(url, "cloudinary.com"):
		url = cdnDimensionsRe.ReplaceAllString(url, "w_2000,h_2000")
		url = cdnBlurRe.ReplaceAllString(url, "")
		url = cdnQualityRe.ReplaceAllString(url, "q_100")
	case strings.Contains(url, "images.unsplash.com"):
		url = unsplashSizeRe.ReplaceAllString(url, "w=2000&h=2000")
	case strings.Contains(url, "wp-content/uploads"):
		if idx := strings.Index(url, "?"); idx >= 0 {
			url = url[:idx]
		}
	}
	return url
}

// srcsetURLs extracts the first URL of each srcset candidate
func srcsetURLs(val string) []string {
	var urls []string
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		urls = append(urls, strings.TrimSpace(strings.SplitN(part, " ", 2)[0]))
	}
	return urls
}

// ImagesFromSelection gathers every plausible image reference from a DOM
// subtree: direct and lazy-load attributes, srcsets, picture sources and
// inline background-image styles. URLs are resolved against baseURL,
// upgraded, deduplicated in first-seen order and capped.
func ImagesFromSelection(sel *goquery.Selection, baseURL string) []string {
	if sel == nil || len(sel.Nodes) == 0 {
		return nil
	}

	var urls []string
	add := func(raw string) {
		if v := ResolveURL(raw, baseURL); v != "" {
			urls = append(urls, v)
		}
	}

	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		for _, attr := range []string{"src", "data-src", "data-original", "data-lazy", "data-lazy-src", "data-zoom-image"} {
			if v, ok := img.Attr(attr); ok {
				add(v)
			}
		}
		for _, attr := range []string{"srcset", "data-srcset"} {
			if v, ok := img.Attr(attr); ok {
				for _, u := range srcsetURLs(v) {
					add(u)
				}
			}
		}
	})

	sel.Find("picture source[srcset]").Each(func(_ int, src *goquery.Selection) {
		v, _ := src.Attr("srcset")
		for _, u := range srcsetURLs(v) {
			add(u)
		}
	})

	if style, ok := sel.Attr("style"); ok {
		if m := backgroundImgRe.FindStringSubmatch(style); m != nil {
			add(m[1])
		}
	}
	sel.Find("div[style]").Each(func(_ int, div *goquery.Selection) {
		style, _ := div.Attr("style")
		if m := backgroundImgRe.FindStringSubmatch(style); m != nil {
			add(m[1])
		}
	})

	return dedupeCapped(upgradeAll(urls), maxImagesPerBlock)
}

// ImagesNearHeading applies ImagesFromSelection over an escalating search
// radius around a heading: parent container, then up to maxSiblings
// following siblings, then preceding siblings, then the grandparent. The
// first non-empty result wins.
func ImagesNearHeading(heading *goquery.Selection, baseURL string, maxSiblings int) []string {
	if heading == nil || len(heading.Nodes) == 0 {
		return nil
	}

	scope := heading.Parent()
	if len(scope.Nodes) == 0 {
		scope = heading
	}
	if imgs := ImagesFromSelection(scope, baseURL); len(imgs) > 0 {
		return imgs
	}

	sib := heading
	for i := 0; i < maxSiblings; i++ {
		sib = sib.Next()
		if len(sib.Nodes) == 0 {
			break
		}
		if imgs := ImagesFromSelection(sib, baseURL); len(imgs) > 0 {
			return imgs
		}
	}

	sib = heading
	for i := 0; i < maxSiblings; i++ {
		sib = sib.Prev()
		if len(sib.Nodes) == 0 {
			break
		}
		if imgs := ImagesFromSelection(sib, baseURL); len(imgs) > 0 {
			return imgs
		}
	}

	grandparent := heading.Parent().Parent()
	if len(grandparent.Nodes) > 0 {
		if imgs := ImagesFromSelection(grandparent, baseURL); len(imgs) > 0 {
			return imgs
		}
	}

	return nil
}

// fallbackImageSelectors locate whole-page main-content images
var fallbackImageSelectors = []string{"main img", ".main-content img", "#content img", "article img"}

// FallbackImages builds the page-level image pool used for listings that end
// up with no block-local images.
func FallbackImages(doc *goquery.Document, baseURL string) []string {
	var urls []string
	for _, selector := range fallbackImageSelectors {
		imgs := doc.Find(selector)
		imgs.EachWithBreak(func(i int, img *goquery.Selection) bool {
			if i >= 10 {
				return false
			}
			src, ok := img.Attr("src")
			if !ok || src == "" {
				src, _ = img.Attr("data-src")
			}
			if v := ResolveURL(src, baseURL); v != "" {
				urls = append(urls, UpgradeImageURL(v))
			}
			return true
		})
	}
	return dedupeCapped(urls, maxImagesPerBlock)
}

func upgradeAll(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		out = append(out, UpgradeImageURL(u))
	}
	return out
}

// dedupeCapped removes duplicates preserving first-seen order and truncates
func dedupeCapped(urls []string, limit int) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if len(out) >= limit {
			break
		}
	}
	return out
}
