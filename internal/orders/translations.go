package orders

import (
	"sort"

	"golang.org/x/text/language"
)

// FallbackLanguage is served when Accept-Language matches none of a row's translations.
const FallbackLanguage = "ru"

// Title picks the translation that best matches an Accept-Language header value.
func (t Translated) Title(acceptLanguage string) string {
	if len(t.Titles) == 0 {
		return ""
	}

	codes := make([]string, 0, len(t.Titles))
	for code := range t.Titles {
		codes = append(codes, code)
	}
	// the matcher's default is its first tag
	sort.Slice(codes, func(i, j int) bool {
		if codes[i] == FallbackLanguage || codes[j] == FallbackLanguage {
			return codes[i] == FallbackLanguage
		}
		return codes[i] < codes[j]
	})

	tags := make([]language.Tag, len(codes))
	for i, code := range codes {
		tags[i] = language.Make(code)
	}

	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.Titles[codes[0]]
	}

	_, idx, conf := language.NewMatcher(tags).Match(prefs...)
	if conf == language.No {
		return t.Titles[codes[0]]
	}
	return t.Titles[codes[idx]]
}
