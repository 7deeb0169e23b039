package output

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// Label turns a kind into a human label: "HotElectronTemperature" becomes
// "Hot Electron Temperature".
func Label(k quantity.Kind) string {
	return titleCaser.String(splitCamel(k.String()))
}

// Title title-cases free text such as experiment names.
func Title(s string) string {
	return titleCaser.String(s)
}

// splitCamel inserts spaces at lower-to-upper boundaries and before the
// last capital of an acronym run ("FWHMPulse" -> "FWHM Pulse").
func splitCamel(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
