package models

import "strings"

// LocalizedText holds one string per supported language.
type LocalizedText struct {
	En string `json:"en" bson:"en"`
	Fa string `json:"fa" bson:"fa"`
	Ar string `json:"ar,omitempty" bson:"ar,omitempty"`
}

// Pick returns the text for lang, falling back to English.
func (t LocalizedText) Pick(lang string) string {
	var s string
	switch strings.ToLower(lang) {
	case "fa":
		s = t.Fa
	case "ar":
		s = t.Ar
	default:
		s = t.En
	}
	if s == "" {
		return t.En
	}
	return s
}

// ImageRef is a published image embedded in a catalog document.
type ImageRef struct {
	URL string        `json:"url" bson:"url"`
	Alt LocalizedText `json:"alt" bson:"alt"`
}

type LocalizedImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

func localizeImages(refs []ImageRef, lang string) []LocalizedImage {
	out := make([]LocalizedImage, 0, len(refs))
	for _, r := range refs {
		out = append(out, LocalizedImage{URL: r.URL, Alt: r.Alt.Pick(lang)})
	}
	return out
}
