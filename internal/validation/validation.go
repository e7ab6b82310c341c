package validation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// TaxonIDPattern defines the valid taxon id format, e.g. NHMSYS0021048735.
var TaxonIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// MaxQueryLength bounds suggestion queries.
const MaxQueryLength = 100

// ValidateTaxonID checks if a taxon id is safe to use as a path segment.
func ValidateTaxonID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return TaxonIDPattern.MatchString(id)
}

// NormalizeQuery trims a suggestion query and collapses inner whitespace.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// ValidateQuery checks a normalized suggestion query is usable.
func ValidateQuery(query string) bool {
	return query != "" && len(query) <= MaxQueryLength
}

// gbifRanks are the ranks accepted by the GBIF species match service.
var gbifRanks = map[string]bool{
	"kingdom": true, "phylum": true, "class": true, "order": true, "family": true,
	"genus": true, "species": true, "subspecies": true, "variety": true, "form": true,
}

// NormalizeRank lowercases a rank name.
func NormalizeRank(rank string) string {
	return strings.ToLower(strings.TrimSpace(rank))
}

// ValidateRank checks if a normalized rank can be sent to GBIF.
func ValidateRank(rank string) bool {
	return gbifRanks[rank]
}

// Clamp limits value to the range [minimum, maximum].
func Clamp(value, minimum, maximum int) int {
	return max(min(value, maximum), minimum)
}

// ParseIntParam parses an integer query parameter, falling back to def when
// empty or malformed, and clamps the result.
func ParseIntParam(raw string, def, minimum, maximum int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = def
	}
	return Clamp(n, minimum, maximum)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
