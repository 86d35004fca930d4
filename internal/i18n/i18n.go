package i18n

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/iamwavecut/warden/resources"
)

const translationsPath = "i18n/translations.yml"

var state = struct {
	once         sync.Once
	translations map[string]map[string]string
}{}

func load() {
	state.translations = map[string]map[string]string{}
	content, err := resources.FS.ReadFile(translationsPath)
	if err != nil {
		log.WithField("error", err.Error()).Errorln("cant load i18n")
		return
	}
	if err := yaml.Unmarshal(content, &state.translations); err != nil {
		log.WithField("error", err.Error()).Errorln("cant unmarshal i18n")
	}
}

// Get returns the translation of key, or key itself when lang is English or has no entry.
func Get(key, lang string) string {
	if lang == "" || strings.EqualFold(lang, "en") {
		return key
	}
	state.once.Do(load)
	if res, ok := state.translations[key][strings.ToUpper(lang)]; ok && res != "" {
		return res
	}
	log.Tracef(`no translation for key "%s"`, key)
	return key
}

// Supported reports whether lang has a translation set.
func Supported(lang string) bool {
	if strings.EqualFold(lang, "en") {
		return true
	}
	_, ok := languageNames[strings.ToLower(lang)]
	return ok
}
