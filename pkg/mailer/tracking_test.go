package mailer

import (
	"strings"
	"testing"
)

func TestRenderWrapsLinksAndInsertsPixel(t *testing.T) {
	renderer := NewRenderer("https://track.leadforge.io/")
	html := `<html><body><a href="https://example.com/pricing?ref=x">Pricing</a></body></html>`

	rendered := renderer.Render(html, "email-1")

	if !strings.Contains(rendered, `href="https://track.leadforge.io/t/c/email-1?u=https%3A%2F%2Fexample.com%2Fpricing%3Fref%3Dx"`) {
		t.Fatalf("expected click-wrapped link, got %q", rendered)
	}
	pixel := `<img src="https://track.leadforge.io/t/o/email-1.png" width="1" height="1" alt="" />`
	if !strings.Contains(rendered, pixel) {
		t.Fatalf("expected open pixel, got %q", rendered)
	}
	if !strings.HasSuffix(rendered, pixel+"</body></html>") {
		t.Fatalf("expected pixel before closing body tag, got %q", rendered)
	}
}

func TestRenderAppendsPixelWithoutBodyTag(t *testing.T) {
	renderer := NewRenderer("https://track.leadforge.io")

	rendered := renderer.Render("<p>hi</p>", "email-2")
	if !strings.HasSuffix(rendered, `<img src="https://track.leadforge.io/t/o/email-2.png" width="1" height="1" alt="" />`) {
		t.Fatalf("expected pixel appended, got %q", rendered)
	}
}

func TestRenderNoopWithoutTrackingBase(t *testing.T) {
	renderer := NewRenderer("")
	html := `<a href="https://example.com">x</a>`

	if rendered := renderer.Render(html, "email-3"); rendered != html {
		t.Fatalf("expected passthrough, got %q", rendered)
	}
}

func TestRenderLeavesNonHTTPLinksAlone(t *testing.T) {
	renderer := NewRenderer("https://track.leadforge.io")
	html := `<a href="mailto:sales@example.com">write us</a>`

	rendered := renderer.Render(html, "email-4")
	if !strings.Contains(rendered, `href="mailto:sales@example.com"`) {
		t.Fatalf("mailto link must not be wrapped, got %q", rendered)
	}
}
