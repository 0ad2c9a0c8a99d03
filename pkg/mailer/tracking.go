package mailer

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var hrefPattern = regexp.MustCompile(`href="(https?://[^"]+)"`)

// Renderer augments outbound HTML with an open pixel and click-wrapped
// links pointing at the tracking endpoint.
type Renderer struct {
	base string
}

func NewRenderer(trackingBase string) *Renderer {
	return &Renderer{base: strings.TrimRight(trackingBase, "/")}
}

func (r *Renderer) Render(html, emailID string) string {
	if r.base == "" {
		return html
	}

	rendered := hrefPattern.ReplaceAllStringFunc(html, func(match string) string {
		target := hrefPattern.FindStringSubmatch(match)[1]
		return fmt.Sprintf(`href="%s/t/c/%s?u=%s"`, r.base, emailID, url.QueryEscape(target))
	})

	pixel := fmt.Sprintf(`<img src="%s/t/o/%s.png" width="1" height="1" alt="" />`, r.base, emailID)
	if idx := strings.LastIndex(rendered, "</body>"); idx >= 0 {
		return rendered[:idx] + pixel + rendered[idx:]
	}
	return rendered + pixel
}
