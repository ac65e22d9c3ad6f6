package services

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestUpgradeImageURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "wix fill parameters",
			url:  "https://static.wixstatic.com/media/abc.jpg/v1/fill/w_300,h_200,q_80,blur_2/abc.jpg",
			want: "https://static.wixstatic.com/media/abc.jpg/v1/fill/w_2000,h_2000,q_100/abc.jpg",
		},
		{
			name: "cloudinary transformation",
			url:  "https://res.cloudinary.com/demo/image/upload/w_400,h_300,q_60/kids.jpg",
			want: "https://res.cloudinary.com/demo/image/upload/w_2000,h_2000,q_100/kids.jpg",
		},
		{
			name: "unsplash size query",
			url:  "https://images.unsplash.com/photo-1?w=400&h=300&fit=crop",
			want: "https://images.unsplash.com/photo-1?w=2000&h=2000&fit=crop",
		},
		{
			name: "wordpress strips query",
			url:  "https://example.com/wp-content/uploads/2024/01/pic.jpg?resize=300%2C200",
			want: "https://example.com/wp-content/uploads/2024/01/pic.jpg",
		},
		{
			name: "unknown host passes through",
			url:  "https://example.com/images/pic.jpg",
			want: "https://example.com/images/pic.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpgradeImageURL(tt.url)
			if got != tt.want {
				t.Errorf("UpgradeImageURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
			if again := UpgradeImageURL(got); again != got {
				t.Errorf("not idempotent: second pass changed %q to %q", got, again)
			}
		})
	}
}

func selectionFromFragment(t *testing.T, fragment, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parsing fragment: %v", err)
	}
	return doc.Find(selector).First()
}

func TestImagesFromSelection(t *testing.T) {
	fragment := `<div class="block">
		<img src="/a.jpg">
		<img src="/a.jpg" data-src="/b.jpg">
		<div style="background-image: url('/c.jpg')"></div>
	</div>`

	sel := selectionFromFragment(t, fragment, "div.block")
	got := ImagesFromSelection(sel, "https://example.com/page")

	want := []string{
		"https://example.com/a.jpg",
		"https://example.com/b.jpg",
		"https://example.com/c.jpg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ImagesFromSelection = %v, want %v", got, want)
	}
}

func TestImagesFromSelectionCap(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<div class="block">`)
	for i := 0; i < 8; i++ {
		b.WriteString(`<img src="/img` + string(rune('a'+i)) + `.jpg">`)
	}
	b.WriteString(`</div>`)

	sel := selectionFromFragment(t, b.String(), "div.block")
	got := ImagesFromSelection(sel, "https://example.com")

	if len(got) != maxImagesPerBlock {
		t.Errorf("got %d images, want %d", len(got), maxImagesPerBlock)
	}
}

func TestImagesFromSelectionSrcset(t *testing.T) {
	fragment := `<div class="block">
		<img srcset="/small.jpg 480w, /large.jpg 1024w">
	</div>`

	sel := selectionFromFragment(t, fragment, "div.block")
	got := ImagesFromSelection(sel, "https://example.com")

	want := []string{"https://example.com/small.jpg", "https://example.com/large.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ImagesFromSelection = %v, want %v", got, want)
	}
}

func TestImagesNearHeading(t *testing.T) {
	t.Run("parent container", func(t *testing.T) {
		fragment := `<div><h2>Splash Park</h2><img src="/splash.jpg"></div>`
		heading := selectionFromFragment(t, fragment, "h2")

		got := ImagesNearHeading(heading, "https://example.com", 8)
		want := []string{"https://example.com/splash.jpg"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ImagesNearHeading = %v, want %v", got, want)
		}
	})

	t.Run("no images anywhere", func(t *testing.T) {
		fragment := `<div><h2>Splash Park</h2><p>text</p></div>`
		heading := selectionFromFragment(t, fragment, "h2")

		if got := ImagesNearHeading(heading, "https://example.com", 8); got != nil {
			t.Errorf("ImagesNearHeading = %v, want nil", got)
		}
	})
}

func TestFallbackImages(t *testing.T) {
	page := `<html><body>
		<main>
			<img src="/main1.jpg">
			<img data-src="/main2.jpg">
		</main>
		<article><img src="/main1.jpg"></article>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parsing page: %v", err)
	}

	got := FallbackImages(doc, "https://example.com")
	want := []string{"https://example.com/main1.jpg", "https://example.com/main2.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FallbackImages = %v, want %v", got, want)
	}
}
