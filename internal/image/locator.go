package image

import "strings"

// Locator builds public URLs of label images.
type Locator struct {
	baseURL string
}

// NewLocator creates a locator rooted at baseURL.
func NewLocator(baseURL string) *Locator {
	return &Locator{baseURL: strings.TrimRight(baseURL, "/")}
}

// URL returns the full URL of imageName, or "" when there is no image.
func (l *Locator) URL(imageName string) string {
	if imageName == "" {
		return ""
	}
	return l.baseURL + "/" + strings.TrimLeft(imageName, "/")
}
