// Package qrcode renders QR codes that point at a public menu page.
package qrcode

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 512

// DefaultLocale is used when the requested locale is empty or unsupported.
const DefaultLocale = "en"

var supportedLocales = map[string]struct{}{
	"en": {},
	"ka": {},
}

// Encoder builds menu links under a public base URL and encodes them as PNG.
type Encoder struct {
	baseURL string
	size    int
}

// NewEncoder validates baseURL and returns an encoder. A non-positive size
// falls back to DefaultSize.
func NewEncoder(baseURL string, size int) (*Encoder, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("qrcode: invalid base url %q", baseURL)
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Encoder{baseURL: strings.TrimRight(baseURL, "/"), size: size}, nil
}

// NormalizeLocale maps unknown locales to DefaultLocale.
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if _, ok := supportedLocales[locale]; ok {
		return locale
	}
	return DefaultLocale
}

// MenuURL returns <base>/<locale>/menu/<id>.
func (e *Encoder) MenuURL(locale, menuID string) string {
	return fmt.Sprintf("%s/%s/menu/%s", e.baseURL, NormalizeLocale(locale), url.PathEscape(menuID))
}

// MenuPNG encodes the public menu URL as a PNG image.
func (e *Encoder) MenuPNG(locale, menuID string) ([]byte, error) {
	if menuID == "" {
		return nil, errors.New("qrcode: menu id is required")
	}
	return qrcode.Encode(e.MenuURL(locale, menuID), qrcode.Medium, e.size)
}
