package services

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// fallbackSlug is used when a name has no letters or digits left after
// normalisation.
const fallbackSlug = "restaurant"

// Dotted İ lower-cases to "i̇" (i plus a combining dot), so it is folded
// before lower-casing.
var upperFold = strings.NewReplacer("İ", "i")

var turkishFold = strings.NewReplacer(
	"ğ", "g", "ü", "u", "ş", "s", "ı", "i", "ö", "o", "ç", "c",
)

// Slugify lower-cases name, transliterates ğ ü ş ı ö ç, collapses every run
// of other characters outside [a-z0-9] into a single hyphen and trims
// hyphens from both ends. Other accented letters are not folded: "Café"
// becomes "caf".
func Slugify(name string) string {
	// NFC so a decomposed ü or ç matches the replacer like a precomposed one.
	folded := turkishFold.Replace(strings.ToLower(upperFold.Replace(norm.NFC.String(name))))

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// collisionSuffix is the single-attempt suffix appended to a taken slug:
// "-" and the base-36 Unix millisecond time.
func collisionSuffix(now time.Time) string {
	return "-" + strconv.FormatInt(now.UnixMilli(), 36)
}
