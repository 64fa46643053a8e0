package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PictureBaseURLPlaceholder is stored in catalog picture URIs and replaced with
// the configured catalog base URL when an order snapshot is taken.
const PictureBaseURLPlaceholder = "http://catalogbaseurltobereplaced"

// Item is read-only reference data during order creation.
type Item struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	PictureURI string          `json:"pictureUri"`
	Price      decimal.Decimal `json:"price"`
}

// URIComposer rewrites stored picture URIs to the public catalog location.
type URIComposer struct {
	baseURL string
}

func NewURIComposer(baseURL string) URIComposer {
	return URIComposer{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// ComposePicURI returns uri with the placeholder host replaced. Without a
// configured base URL the stored value is returned unchanged.
func (c URIComposer) ComposePicURI(uri string) string {
	if c.baseURL == "" {
		return uri
	}
	return strings.Replace(uri, PictureBaseURLPlaceholder, c.baseURL, 1)
}
