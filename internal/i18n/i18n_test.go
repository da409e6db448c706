package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		accept    string
		fallback  string
		want      language.Tag
	}{
		{"explicit preference wins", "ar", "en-US", "en", language.Arabic},
		{"header when no preference", "", "ar-IQ,ar;q=0.9,en;q=0.5", "en", language.Arabic},
		{"fallback when header unsupported", "", "fr-FR", "ar", language.Arabic},
		{"garbage preference ignored", "??", "en-GB", "ar", language.English},
		{"english default", "", "", "", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Negotiate(tt.preferred, tt.accept, tt.fallback); got != tt.want {
				t.Errorf("Negotiate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocalizer(t *testing.T) {
	en := For(language.English)
	ar := For(language.Arabic)

	if got := en.T("home.greeting", "Sara"); got != "Hello, Sara" {
		t.Errorf("en greeting = %q", got)
	}
	if got := ar.T("bills.requestSuccess"); got != "تم إرسال طلب الفاتورة بنجاح!" {
		t.Errorf("ar request success = %q", got)
	}
	if en.Dir() != "ltr" || ar.Dir() != "rtl" {
		t.Errorf("unexpected direction")
	}
	if en.Lang() != "en" || ar.Lang() != "ar" {
		t.Errorf("unexpected lang codes %q %q", en.Lang(), ar.Lang())
	}
	if got := en.Month("3"); got != "Mar" {
		t.Errorf("Month(3) = %q", got)
	}
	if got := ar.Month("12"); got != "ديسمبر" {
		t.Errorf("ar Month(12) = %q", got)
	}
	if got := en.Month("13"); got != "13" {
		t.Errorf("Month(13) = %q", got)
	}
	if got := en.Amount(1234.5); got != "1,234.5" {
		t.Errorf("Amount = %q", got)
	}
}
