package utils

import (
	"strings"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup and surrounding whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// SanitizeAddress cleans every free-text field of a shipping address in place.
func SanitizeAddress(a *models.Address) {
	a.FullName = SanitizeText(a.FullName)
	a.Phone = SanitizeText(a.Phone)
	a.Street = SanitizeText(a.Street)
	a.City = SanitizeText(a.City)
	a.State = SanitizeText(a.State)
	a.PostalCode = SanitizeText(a.PostalCode)
	a.Country = strings.ToUpper(SanitizeText(a.Country))
}
