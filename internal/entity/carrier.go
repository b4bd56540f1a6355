package entity

import "strings"

// CarrierSlug identifies a shipping carrier in a form the tracking
// client understands.
type CarrierSlug string

const (
	CarrierKerry        CarrierSlug = "kerry"
	CarrierFlash        CarrierSlug = "flash"
	CarrierJNT          CarrierSlug = "jnt"
	CarrierThailandPost CarrierSlug = "thailand-post"
	CarrierDHL          CarrierSlug = "dhl"
	CarrierNinjaVan     CarrierSlug = "ninjavan"
	CarrierSPX          CarrierSlug = "spx"
	CarrierBest         CarrierSlug = "best"
	CarrierUnknown      CarrierSlug = "unknown"
)

// carrierKeywords maps lowercase substrings of free-text shipping
// provider names, as they appear in marketplace exports, to slugs.
// Order matters: the first match wins.
var carrierKeywords = []struct {
	keyword string
	slug    CarrierSlug
}{
	{"kerry", CarrierKerry},
	{"flash", CarrierFlash},
	{"j&t", CarrierJNT},
	{"jnt", CarrierJNT},
	{"thailand post", CarrierThailandPost},
	{"thaipost", CarrierThailandPost},
	{"ไปรษณีย์", CarrierThailandPost},
	{"ems", CarrierThailandPost},
	{"dhl", CarrierDHL},
	{"ninja", CarrierNinjaVan},
	{"spx", CarrierSPX},
	{"shopee xpress", CarrierSPX},
	{"best express", CarrierBest},
}

// InferCarrier derives a carrier slug from a free-text shipping
// provider string. Unmatched input yields CarrierUnknown.
func InferCarrier(provider string) CarrierSlug {
	normalized := strings.ToLower(strings.TrimSpace(provider))
	if normalized == "" {
		return CarrierUnknown
	}
	for _, ck := range carrierKeywords {
		if strings.Contains(normalized, ck.keyword) {
			return ck.slug
		}
	}
	return CarrierUnknown
}
