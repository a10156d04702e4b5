// Package normalize holds the cell-level cleanup rules shared by identity
// resolution and reference ingestion: slugs, street abbreviations, zip
// extraction, coordinate truncation, and the flexible date formats that show
// up in partner exports.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// streetAbbreviations maps full street designators to their USPS short
// forms. Matching is word-bounded on the uppercased address.
var streetAbbreviations = map[string]string{
	"STREET":    "ST",
	"AVENUE":    "AVE",
	"ROAD":      "RD",
	"DRIVE":     "DR",
	"BOULEVARD": "BLVD",
	"PLACE":     "PL",
	"SQUARE":    "SQ",
	"LANE":      "LN",
	"TERRACE":   "TER",
	"COURT":     "CT",
	"HIGHWAY":   "HWY",
}

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapse = regexp.MustCompile(`-+`)
	multiSpace   = regexp.MustCompile(`\s+`)
	zipPattern   = regexp.MustCompile(`(\d{5})`)

	titleCaser = cases.Title(language.AmericanEnglish)
)

// Slugify lowercases a name and reduces it to hyphen-separated a-z0-9 runs.
func Slugify(s string) string {
	out := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(slugCollapse.ReplaceAllString(out, "-"), "-")
}

// Address uppercases a street address, applies the abbreviation table and
// collapses whitespace.
func Address(addr string) string {
	if strings.TrimSpace(addr) == "" {
		return ""
	}
	words := strings.Fields(strings.ToUpper(addr))
	for i, w := range words {
		if abbr, ok := streetAbbreviations[w]; ok {
			words[i] = abbr
		}
	}
	return multiSpace.ReplaceAllString(strings.Join(words, " "), " ")
}

// City title-cases a city name.
func City(s string) string {
	return strings.TrimSpace(titleCaser.String(strings.ToLower(s)))
}

// State uppercases and trims a state code.
func State(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Zip extracts the first 5-digit run from a postal code cell. Returns ""
// when no such run exists.
func Zip(s string) string {
	return zipPattern.FindString(s)
}

// Truncate cuts a float to the given number of decimal places without
// rounding. Identity hashing uses 4 places (~11m of precision).
func Truncate(v float64, decimals int) float64 {
	factor := math.Pow10(decimals)
	return math.Trunc(v*factor) / factor
}

// CoordinateKey renders a truncated coordinate the way it is hashed:
// shortest decimal representation, no trailing zeros.
func CoordinateKey(v float64) string {
	return strconv.FormatFloat(Truncate(v, 4), 'f', -1, 64)
}

// SyntheticLocationID derives the stable location identity from truncated
// coordinates, with the store number as tie-break when present.
func SyntheticLocationID(lat, lon float64, storeNumber string) string {
	input := CoordinateKey(lat) + ":" + CoordinateKey(lon)
	if sn := strings.TrimSpace(storeNumber); sn != "" {
		input += ":" + sn
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// FullAddress joins the normalized address with its optional complement and
// store number for report output.
func FullAddress(address, complement, storeNumber string) string {
	out := address
	if complement != "" {
		out += ", " + complement
	}
	if storeNumber != "" {
		out += ", " + storeNumber
	}
	return out
}

// dateLayouts are tried in order by ParseDate. Partner exports mix ISO
// dates, slashed dates and full timestamps.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a date cell in any of the supported layouts, truncated
// to the day in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, eris.New("normalize: empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, eris.Errorf("normalize: unparseable date %q", s)
}

// Day truncates a timestamp to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Midpoint returns the temporal center of a scrape window, flooring the
// half-day. A 2025-01-01..2025-01-31 window lands on 2025-01-16.
func Midpoint(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	return start.AddDate(0, 0, days/2)
}

var clockPattern = regexp.MustCompile(`(\d{2}:\d{2}:\d{2})(?:[.,]\d+)?`)

// ParseClockTime extracts an HH:MM:SS time from a cell, tolerating
// fractional seconds with either dot or comma separators. The fraction is
// discarded.
func ParseClockTime(s string) (string, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return "", eris.Errorf("normalize: no HH:MM:SS in %q", s)
	}
	if _, err := time.Parse("15:04:05", m[1]); err != nil {
		return "", eris.Wrapf(err, "normalize: clock time %q", s)
	}
	return m[1], nil
}
