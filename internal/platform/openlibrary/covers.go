package openlibrary

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// PlaceholderThreshold is the byte length under which a cover response is
// treated as the 1x1 placeholder the image service returns for unknown covers.
const PlaceholderThreshold = 1000

// CoverURL builds the cover image URL for an ISBN and size (S, M or L).
// The cover probe and the cover acquirer both use it so previews and stored
// covers reference the same image.
func (c *Client) CoverURL(code, size string) string {
	return fmt.Sprintf("%s/b/isbn/%s-%s.jpg", c.coversURL, code, normalizeSize(size))
}

// ProbeCover checks whether a real cover exists without downloading it.
// It returns the cover URL, or "" when there is none or the probe fails.
func (c *Client) ProbeCover(ctx context.Context, code, size string) string {
	u := c.CoverURL(code, size)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, u, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("cover probe failed", "isbn", code, "error", err)
		return ""
	}
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}
	if resp.ContentLength >= 0 && resp.ContentLength < PlaceholderThreshold {
		return ""
	}
	return u
}

func normalizeSize(size string) string {
	switch s := strings.ToUpper(size); s {
	case "S", "M", "L":
		return s
	default:
		return "L"
	}
}
