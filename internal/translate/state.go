package translate

import (
	"fmt"

	"lingod/internal/manager"
)

// State is everything the presentation layer renders for the translator.
type State struct {
	Supported  bool
	Config     Config
	Input      string
	Output     string
	Partial    string
	Streaming  bool
	Pending    bool
	Download   manager.DownloadState
	ModelReady bool

	DetectorReady bool
	Detecting     bool
	// Confidence of the last detection that set the source language.
	Confidence float64

	History []manager.HistoryEntry[Config]
	Notice  *manager.Notice
}

// Action is a state transition handled by Reduce.
type Action interface{ action() }

type (
	SetSource       struct{ Tag string }
	SetTarget       struct{ Tag string }
	SetInput        struct{ Text string }
	Swap            struct{}
	Clear           struct{}
	LoadSample      struct{ Index int }
	ToggleStreaming struct{}
	DismissNotice   struct{}

	Started   struct{}
	Partial   struct{ Text string }
	Succeeded struct {
		Result  manager.Result
		Config  Config
		History []manager.HistoryEntry[Config]
	}
	Failed   struct{ Err error }
	Progress struct {
		Download   manager.DownloadState
		ModelReady bool
	}
	Unsupported struct{ Err error }

	DetectorReady struct{}
	DetectStarted struct{}
	Detected      struct {
		Language   string
		Confidence float64
	}
	DetectFailed struct{ Err error }
)

func (SetSource) action() {}
func (SetTarget) action() {}
func (SetInput) action() {}
func (Swap) action() {}
func (Clear) action() {}
func (LoadSample) action() {}
func (ToggleStreaming) action() {}
func (DismissNotice) action() {}
func (Started) action() {}
func (Partial) action() {}
func (Succeeded) action() {}
func (Failed) action() {}
func (Progress) action() {}
func (Unsupported) action() {}
func (DetectorReady) action() {}
func (DetectStarted) action() {}
func (Detected) action() {}
func (DetectFailed) action() {}

// InitialState is the form before any interaction.
func InitialState(cfg Config) State {
	return State{Supported: true, Config: cfg}
}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetSource:
		s.Config.SourceLanguage = a.Tag
		s.Confidence = 0
	case SetTarget:
		s.Config.TargetLanguage = a.Tag
	case SetInput:
		s.Input = a.Text
	case Swap:
		s.Config.SourceLanguage, s.Config.TargetLanguage = s.Config.TargetLanguage, s.Config.SourceLanguage
		s.Input, s.Output = s.Output, s.Input
		s.Partial = ""
		s.Confidence = 0
	case Clear:
		s.Input, s.Output, s.Partial = "", "", ""
		s.Confidence = 0
	case LoadSample:
		if a.Index >= 0 && a.Index < len(Samples) {
			smp := Samples[a.Index]
			s.Input = smp.Text
			s.Config.SourceLanguage = smp.Source
			s.Output, s.Partial = "", ""
			s.Confidence = 0
		}
	case ToggleStreaming:
		s.Streaming = !s.Streaming
	case DismissNotice:
		s.Notice = nil
	case Started:
		s.Pending = true
		s.Partial = ""
		s.Notice = nil
	case Partial:
		s.Partial = a.Text
		s.Output = a.Text
	case Succeeded:
		s.Pending = false
		s.Output = a.Result.Final
		s.Partial = ""
		s.History = a.History
		s.Notice = &manager.Notice{Level: manager.NoticeSuccess, Title: "Translation complete", Description: "Translated from " + LanguageName(a.Config.SourceLanguage) + " to " + LanguageName(a.Config.TargetLanguage)}
	case Failed:
		s.Pending = false
		s.Partial = ""
		s.Notice = manager.NoticeFor(a.Err)
	case Progress:
		if a.ModelReady && !s.ModelReady {
			s.Notice = &manager.Notice{Level: manager.NoticeSuccess, Title: "Translation model ready"}
		}
		s.Download = a.Download
		s.ModelReady = a.ModelReady
	case Unsupported:
		s.Supported = false
		s.Notice = manager.NoticeFor(a.Err)
	case DetectorReady:
		s.DetectorReady = true
	case DetectStarted:
		s.Detecting = true
		s.Notice = nil
	case Detected:
		s.Detecting = false
		s.Config.SourceLanguage = a.Language
		s.Confidence = a.Confidence
		s.Notice = &manager.Notice{
			Level:       manager.NoticeInfo,
			Title:       "Language detected",
			Description: fmt.Sprintf("%s (%.0f%% confidence)", LanguageName(a.Language), a.Confidence*100),
		}
	case DetectFailed:
		s.Detecting = false
		s.Notice = manager.NoticeFor(a.Err)
	}
	return s
}
