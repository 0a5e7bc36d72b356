package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Country suffixes brokers like to append to place names. Stripped before
// lookup so "Utrecht, Nederland" and "Utrecht" resolve to the same location.
var countrySuffixes = []string{
	", nederland",
	", netherlands",
	", the netherlands",
}

// locationAliases canonicalizes municipal spellings that differ across brokers.
var locationAliases = map[string]string{
	"'s-Hertogenbosch": "Den Bosch",
}

// NormalizeLocation cleans a broker's free-text place name into the canonical
// form used as the location business key: trimmed, country suffix removed,
// title-cased on word boundaries, aliases applied.
func NormalizeLocation(raw string) string {
	name := strings.TrimSpace(raw)

	lower := strings.ToLower(name)
	for _, suffix := range countrySuffixes {
		if strings.HasSuffix(lower, suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}

	name = TitleCase(name)
	if alias, ok := locationAliases[name]; ok {
		return alias
	}
	return name
}

// TitleCase lowercases the input and uppercases the first letter of every
// word, where words are delimited by a space or a hyphen.
// "AMSTERDAM-ZUID" becomes "Amsterdam-Zuid".
func TitleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	for i, r := range runes {
		if i == 0 || runes[i-1] == ' ' || runes[i-1] == '-' {
			runes[i] = unicode.ToUpper(r)
		}
	}
	return string(runes)
}

// dmyPattern matches posting dates of the form "02 januari 2006".
var dmyPattern = regexp.MustCompile(`^(3[01]|[12][0-9]|0[1-9]) ([a-z]+) ([0-9]{4})$`)

var dutchMonths = map[string]time.Month{
	"januari":   time.January,
	"februari":  time.February,
	"maart":     time.March,
	"april":     time.April,
	"mei":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"augustus":  time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// ParsePostingDate parses a Dutch "DD monthname YYYY" date string. Strings
// that do not match the pattern yield nil rather than an error, since most
// brokers put relative labels ("vandaag") or nothing in this field.
func ParsePostingDate(s string) *time.Time {
	m := dmyPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}
	month, ok := dutchMonths[m[2]]
	if !ok {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// ParseHours reads weekly hours from the first two characters of strings like
// "40 uur per week". Anything unparsable yields nil, never an error.
func ParseHours(s string) *int {
	if len(s) <= 2 {
		return nil
	}
	hours, err := strconv.Atoi(s[:2])
	if err != nil {
		return nil
	}
	return &hours
}
