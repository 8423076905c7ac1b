package translate

import (
	"lingod/internal/capability"
	"lingod/pkg/types"
)

// Config is the translator configuration; equal configs share an instance.
type Config = capability.TranslatorOptions

// DefaultConfig translates English to Spanish.
func DefaultConfig() Config {
	return Config{SourceLanguage: "en", TargetLanguage: "es"}
}

// Languages offered by the presentation layers.
var Languages = []types.Language{
	{Tag: "en", Name: "English"},
	{Tag: "es", Name: "Spanish"},
	{Tag: "fr", Name: "French"},
	{Tag: "de", Name: "German"},
	{Tag: "it", Name: "Italian"},
	{Tag: "pt", Name: "Portuguese"},
	{Tag: "nl", Name: "Dutch"},
	{Tag: "ja", Name: "Japanese"},
	{Tag: "ko", Name: "Korean"},
	{Tag: "zh", Name: "Chinese"},
	{Tag: "ru", Name: "Russian"},
	{Tag: "ar", Name: "Arabic"},
	{Tag: "hi", Name: "Hindi"},
}

// LanguageName returns the display name for tag, or tag itself.
func LanguageName(tag string) string {
	p := capability.PrimaryTag(tag)
	for _, l := range Languages {
		if l.Tag == p {
			return l.Name
		}
	}
	return tag
}

// Sample is a canned input for demonstrations.
type Sample struct {
	Source string
	Text   string
}

var Samples = []Sample{
	{Source: "en", Text: "Hello, how are you today? The weather is lovely and I am going for a walk in the park."},
	{Source: "es", Text: "El conocimiento es poder. La información es liberadora."},
	{Source: "fr", Text: "La vie est belle quand on prend le temps de la regarder."},
	{Source: "de", Text: "Ich bin ein Berliner und das ist nicht die ganze Geschichte."},
}
