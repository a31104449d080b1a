package i18n

import (
	"embed"
	"encoding/json"
	"log"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// NewLocalizer builds a localizer over the embedded message catalogs.
// Unknown languages fall back to English.
func NewLocalizer(lang string) *i18n.Localizer {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		log.Printf("Warning: could not read embedded locales: %v", err)
	}
	for _, entry := range entries {
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			log.Printf("Warning: could not read locale %s: %v", entry.Name(), err)
			continue
		}
		if _, err := bundle.ParseMessageFileBytes(data, entry.Name()); err != nil {
			log.Printf("Warning: could not parse locale %s: %v", entry.Name(), err)
		}
	}

	return i18n.NewLocalizer(bundle, lang, language.English.String())
}

// T resolves a plain message by ID, returning the ID itself when missing so
// the UI never shows an empty status.
func T(loc *i18n.Localizer, id string) string {
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}

// TD resolves a templated message by ID.
func TD(loc *i18n.Localizer, id string, data map[string]interface{}) string {
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		return id
	}
	return msg
}
