package utils

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// languageAliases maps the display names stored in the branding config to BCP 47 tags.
var languageAliases = map[string]string{
	"español":   "es",
	"espanol":   "es",
	"spanish":   "es",
	"english":   "en",
	"inglés":    "en",
	"português": "pt",
	"portugues": "pt",
}

// ParseLanguage turns a config language value ("Español", "es-AR", ...) into a tag.
// Unknown values fall back to Spanish, the storefront's default.
func ParseLanguage(value string) language.Tag {
	v := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := languageAliases[v]; ok {
		v = alias
	}
	tag, err := language.Parse(v)
	if err != nil {
		return language.Spanish
	}
	return tag
}

// FormatPoints renders a point amount with locale grouping, e.g. 2900 -> "2,900" for English.
func FormatPoints(points int, lang string) string {
	p := message.NewPrinter(ParseLanguage(lang))
	return p.Sprintf("%d", points)
}
