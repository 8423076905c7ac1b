package manager

import (
	"context"
	"errors"
)

// NoticeLevel grades a user-facing notification.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot, user-facing message carried on feature state.
type Notice struct {
	Level       NoticeLevel `json:"level"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
}

// NoticeFor converts a session error into the notice shown to the user.
// Returns nil for a nil error.
func NoticeFor(err error) *Notice {
	switch {
	case err == nil:
		return nil
	case IsEmptyInput(err):
		return &Notice{Level: NoticeWarning, Title: "Nothing to process", Description: "Enter some text first."}
	case IsUnsupportedEnvironment(err):
		return &Notice{Level: NoticeError, Title: "Not supported", Description: err.Error()}
	case IsCreationFailed(err):
		return &Notice{Level: NoticeError, Title: "Could not load the model", Description: err.Error()}
	case IsInvocationFailed(err):
		return &Notice{Level: NoticeError, Title: "Request failed", Description: err.Error()}
	case IsDetectionFailed(err):
		return &Notice{Level: NoticeWarning, Title: "Language detection failed", Description: err.Error()}
	case IsSuperseded(err):
		return &Notice{Level: NoticeInfo, Title: "Settings changed", Description: "A newer request replaced this one."}
	case IsSessionClosed(err), errors.Is(err, context.Canceled):
		return &Notice{Level: NoticeInfo, Title: "Canceled"}
	}
	return &Notice{Level: NoticeError, Title: "Unexpected error", Description: err.Error()}
}
