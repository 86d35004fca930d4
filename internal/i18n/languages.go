package i18n

import "strings"

var languageNames = map[string]string{
	"ar": "Arabic",
	"en": "English",
}

func GetLanguageName(code string) string {
	normalized := strings.ToLower(code)
	if name, ok := languageNames[normalized]; ok {
		return name
	}
	return code
}
