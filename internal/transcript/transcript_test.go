package transcript

import (
	"errors"
	"strings"
	"testing"

	"github.com/hyperifyio/ytreader/internal/dom/htmldom"
)

func TestFromPage_JoinsTranscriptSegments(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body>
	  <ytd-transcript-segment-renderer><div class="segment-text"> Hello
	    there </div></ytd-transcript-segment-renderer>
	  <ytd-transcript-segment-renderer><div class="segment-text">general</div></ytd-transcript-segment-renderer>
	  <div id="description">A description that is long enough to be used here.</div>
	</body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := FromPage(doc)
	if err != nil {
		t.Fatalf("from page: %v", err)
	}
	if res.Source != SourceTranscript || res.Text != "Hello there general" {
		t.Fatalf("got %+v", res)
	}
}

func TestFromPage_SkipsShortDescriptionCandidates(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body>
	  <div id="description">too short</div>
	  <div id="description-inline-expander">This inline description is comfortably over thirty characters.</div>
	</body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := FromPage(doc)
	if err != nil {
		t.Fatalf("from page: %v", err)
	}
	if res.Source != SourceDescription || !strings.HasPrefix(res.Text, "This inline description") {
		t.Fatalf("got %+v", res)
	}
}

func TestFromPage_NoText(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><div id="description">exactly thirty characters!!!!!</div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := FromPage(doc); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestNormalize_ComposesAndCollapses(t *testing.T) {
	if got := Normalize("  café \n\t au  lait "); got != "café au lait" {
		t.Fatalf("normalize = %q", got)
	}
}

func TestFromHTML_PrefersMainAndSkipsBoilerplate(t *testing.T) {
	page := `<!doctype html><html><head><title>Test Page</title>
	  <meta name="description" content="short">
	</head><body>
	  <nav>Nav should be ignored</nav>
	  <div class="cookie-banner">Accept cookies</div>
	  <main><h1>Main Heading</h1><p>This is the main content paragraph.</p>
	    <script>var x = 1;</script></main>
	  <footer>Footer text</footer>
	</body></html>`
	doc := FromHTML([]byte(page))
	if doc.Title != "Test Page" {
		t.Fatalf("title = %q", doc.Title)
	}
	if doc.Text != "Main Heading\n\nThis is the main content paragraph." {
		t.Fatalf("text = %q", doc.Text)
	}
	res, err := doc.Best()
	if err != nil || res.Source != SourceBody {
		t.Fatalf("best = %+v, %v", res, err)
	}
}

func TestFromHTML_MetaDescriptionWins(t *testing.T) {
	page := `<html><head>
	  <meta property="og:description" content="An open graph description of the video that is long.">
	</head><body><p>Body text that is also fairly long for testing.</p></body></html>`
	res, err := FromHTML([]byte(page)).Best()
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if res.Source != SourceMeta || !strings.HasPrefix(res.Text, "An open graph") {
		t.Fatalf("got %+v", res)
	}
}

func TestFromHTML_EmptyInput(t *testing.T) {
	if _, err := FromHTML(nil).Best(); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestDocument_BestFallsBackToArticle(t *testing.T) {
	d := Document{Text: "tiny", Article: "A readability article text that is long enough."}
	res, err := d.Best()
	if err != nil || res.Source != SourceArticle {
		t.Fatalf("best = %+v, %v", res, err)
	}
}
