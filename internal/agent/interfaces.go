package agent

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Caller is the soft-failing text generation boundary. ok is false when no
// usable text came back; the failure has already been logged.
type Caller interface {
	Call(ctx context.Context, prompt, system string) (text string, tokens int, ok bool)
}

// Synthesizer writes narration audio for text to dest.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dest string) bool
}

// ChatCompleter is the subset of *openai.Client used by Client.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SpeechCreator is the subset of *openai.Client used by Speaker.
type SpeechCreator interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// TokenCounter estimates token usage when the service does not report it.
type TokenCounter interface {
	Count(texts ...string) int
}
