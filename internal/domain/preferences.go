package domain

import "encoding/json"

// Supported interface languages.
const (
	LanguageEnglish = "en"
	LanguageSpanish = "es"
	LanguageFrench  = "fr"
	LanguageGerman  = "de"
)

// Preferences are per-user settings stored as one JSON document. Theme is
// kept as stored but never changed by this service.
type Preferences struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

// DefaultPreferences apply to users who never saved any.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "dark", Language: LanguageEnglish, Notifications: true}
}

// PreferencesUpdate is the part of the document a user may change. It is
// merged into the stored document so unrelated keys survive.
type PreferencesUpdate struct {
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

// DecodePreferences reads a stored document over the defaults. A NULL or
// empty document yields the defaults; fields missing from it keep theirs.
func DecodePreferences(raw []byte) (Preferences, error) {
	prefs := DefaultPreferences()
	if len(raw) == 0 || string(raw) == "null" {
		return prefs, nil
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return DefaultPreferences(), err
	}
	return prefs, nil
}
