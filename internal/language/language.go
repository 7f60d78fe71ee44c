package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Undetermined is the ISO 639-2 code for an unknown language.
const Undetermined = "und"

// aliases maps inputs x/text does not parse to ISO 639-2/T codes:
// bibliographic variants and the English names operators tend to type.
var aliases = map[string]string{
	"fre":        "fra",
	"ger":        "deu",
	"chi":        "zho",
	"dut":        "nld",
	"english":    "eng",
	"spanish":    "spa",
	"french":     "fra",
	"german":     "deu",
	"italian":    "ita",
	"portuguese": "por",
	"japanese":   "jpn",
	"chinese":    "zho",
}

// ToISO3 normalizes a language code, name, or BCP 47 tag ("en", "English",
// "pt-BR", "en_US") to ISO 639-2. Unrecognized input yields "und", except
// three-letter codes, which pass through unchanged.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Undetermined
	}
	if alias, ok := aliases[code]; ok {
		return alias
	}
	if base, ok := parseBase(code); ok {
		return base.ISO3()
	}
	if len(code) == 3 {
		return code
	}
	return Undetermined
}

// DisplayName returns the English name of a language ("eng" -> "English").
// Empty input gives "Unknown"; unrecognized codes are returned uppercased.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if base, ok := parseBase(ToISO3(code)); ok {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

func parseBase(code string) (language.Base, bool) {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return language.Base{}, false
	}
	base, confidence := tag.Base()
	if confidence == language.No || base.String() == Undetermined {
		return language.Base{}, false
	}
	return base, true
}

// tagKeys are the stream metadata keys muxers use for the language, in
// order of preference.
var tagKeys = []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}

// ExtractFromTags returns the ISO 639-2 language recorded in stream tags, or
// "" when no language tag is present.
func ExtractFromTags(tags map[string]string) string {
	for _, key := range tagKeys {
		value := strings.TrimSpace(strings.ReplaceAll(tags[key], "\x00", ""))
		if value != "" {
			return ToISO3(value)
		}
	}
	return ""
}
