// Package i18n negotiates the display language and formats messages and
// amounts for it. English and Arabic are supported.
package i18n

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"golang.org/x/text/number"
)

var (
	supported = []language.Tag{language.English, language.Arabic}
	matcher   = language.NewMatcher(supported)
	cat       = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, texts := range messages {
		for i, tag := range supported {
			if err := b.SetString(tag, key, texts[i]); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Negotiate picks the language from an explicit preference, then the
// Accept-Language header, then fallback.
func Negotiate(preferred, acceptLanguage, fallback string) language.Tag {
	if t, ok := match(preferred); ok {
		return t
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			if t, _, conf := matcher.Match(tags...); conf != language.No {
				return base(t)
			}
		}
	}
	if t, ok := match(fallback); ok {
		return t
	}
	return language.English
}

func match(s string) (language.Tag, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.Und, false
	}
	t, err := language.Parse(s)
	if err != nil {
		return language.Und, false
	}
	m, _, conf := matcher.Match(t)
	if conf == language.No {
		return language.Und, false
	}
	return base(m), true
}

// base strips the -u-rg extension the matcher may add.
func base(t language.Tag) language.Tag {
	b, _ := t.Base()
	for _, s := range supported {
		if sb, _ := s.Base(); sb == b {
			return s
		}
	}
	return language.English
}

// Localizer formats text for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// For returns a Localizer for tag.
func For(tag language.Tag) *Localizer {
	tag = base(tag)
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// T returns the message for key with args substituted.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Lang is the BCP 47 code, e.g. "ar".
func (l *Localizer) Lang() string {
	return l.tag.String()
}

// Dir is the text direction for the html dir attribute.
func (l *Localizer) Dir() string {
	if l.tag == language.Arabic {
		return "rtl"
	}
	return "ltr"
}

// Amount formats a bill amount with locale digit grouping and at most two
// decimals.
func (l *Localizer) Amount(v float64) string {
	return l.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Month returns the short month name for "1".."12" or "01".."12". Anything
// else is returned unchanged.
func (l *Localizer) Month(m string) string {
	n, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil || n < 1 || n > 12 {
		return m
	}
	idx := 0
	if l.tag == language.Arabic {
		idx = 1
	}
	return monthNames[idx][n-1]
}
