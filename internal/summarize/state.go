package summarize

import (
	"lingod/internal/capability"
	"lingod/internal/manager"
)

// State is everything the presentation layer renders for the summarizer.
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
	History    []manager.HistoryEntry[Config]
	Notice     *manager.Notice
}

// Action is a state transition handled by Reduce.
type Action interface{ action() }

type (
	SetType         struct{ Type capability.SummaryType }
	SetFormat       struct{ Format capability.SummaryFormat }
	SetLength       struct{ Length capability.SummaryLength }
	SetContext      struct{ Text string }
	SetInput        struct{ Text string }
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
)

func (SetType) action() {}
func (SetFormat) action() {}
func (SetLength) action() {}
func (SetContext) action() {}
func (SetInput) action() {}
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

// InitialState is the form before any interaction.
func InitialState(cfg Config) State {
	return State{Supported: true, Config: cfg}
}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetType:
		s.Config.Type = a.Type
	case SetFormat:
		s.Config.Format = a.Format
	case SetLength:
		s.Config.Length = a.Length
	case SetContext:
		s.Config.SharedContext = a.Text
	case SetInput:
		s.Input = a.Text
	case Clear:
		s.Input, s.Output, s.Partial = "", "", ""
		s.Config.SharedContext = ""
	case LoadSample:
		if a.Index >= 0 && a.Index < len(Samples) {
			s.Input = Samples[a.Index].Text
			s.Output, s.Partial = "", ""
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
		s.Notice = &manager.Notice{Level: manager.NoticeSuccess, Title: "Summary generated", Description: "Created a " + string(a.Config.Type) + " summary"}
	case Failed:
		s.Pending = false
		s.Partial = ""
		s.Notice = manager.NoticeFor(a.Err)
	case Progress:
		if a.ModelReady && !s.ModelReady {
			s.Notice = &manager.Notice{Level: manager.NoticeSuccess, Title: "Summarization model ready"}
		}
		s.Download = a.Download
		s.ModelReady = a.ModelReady
	case Unsupported:
		s.Supported = false
		s.Notice = manager.NoticeFor(a.Err)
	}
	return s
}
