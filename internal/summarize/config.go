package summarize

import "lingod/internal/capability"

// Config is the summarizer configuration; equal configs share an instance.
type Config = capability.SummarizerOptions

// DefaultConfig is a medium-length plain-text tl;dr.
func DefaultConfig() Config {
	return Config{
		Type:   capability.SummaryTLDR,
		Format: capability.FormatPlainText,
		Length: capability.LengthMedium,
	}
}

// Sample is a canned article for demonstrations.
type Sample struct {
	Title string
	Text  string
}

var Samples = []Sample{
	{
		Title: "Go concurrency",
		Text: "Go makes concurrency a first-class concept. Goroutines are cheap threads managed by the runtime. " +
			"Channels let goroutines communicate without sharing memory. The select statement waits on several " +
			"channel operations at once. Together these primitives make it practical to structure programs as " +
			"many small cooperating processes.",
	},
	{
		Title: "On-device models",
		Text: "Running language models on the device keeps user data local. The first use downloads the model, " +
			"which can take a while on slow connections. Later uses start almost instantly because the model is " +
			"cached. Smaller models trade some quality for speed and memory.",
	},
	{
		Title: "Coffee",
		Text: "Coffee is brewed from roasted beans of the Coffea plant. It originated in Ethiopia and spread " +
			"through Yemen to the rest of the world. Today it is one of the most traded agricultural products. " +
			"Its caffeine content makes it a popular morning drink.",
	},
}
