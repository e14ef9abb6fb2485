package phase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dotcommander/socialstory/internal/agent"
)

func TestBaseGeneratorRun(t *testing.T) {
	tests := []struct {
		name     string
		stage    Stage
		reply    string
		wantText string
	}{
		{"page fence stripped", StagePage, "```html\n<html></html>\n```", "<html></html>"},
		{"script fence stripped", StageQuiz, "```javascript\nfunction initQuiz() {}\n```", "function initQuiz() {}"},
		{"structure only trimmed", StageStructure, "  ```json\n{}\n```  ", "```json\n{}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := new(agent.MockClient)
			caller.On("Call", mock.Anything, "prompt text", "system text").Return(tt.reply, 42, true)

			gen := NewBaseGenerator(caller)
			text, tokens, ok := gen.Run(context.Background(), Prompt{Stage: tt.stage, System: "system text", Text: "prompt text"})

			assert.True(t, ok)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, 42, tokens)
			caller.AssertExpectations(t)
		})
	}
}

func TestBaseGeneratorRunAbsent(t *testing.T) {
	caller := new(agent.MockClient)
	caller.On("Call", mock.Anything, mock.Anything, mock.Anything).Return("", 0, false)

	text, tokens, ok := NewBaseGenerator(caller).Run(context.Background(), Prompt{Stage: StageIndex, Text: "p"})

	assert.False(t, ok)
	assert.Empty(t, text)
	assert.Zero(t, tokens)
}

func TestBaseGeneratorRunBlankReply(t *testing.T) {
	for _, reply := range []string{"   \n", "```html\n```"} {
		caller := new(agent.MockClient)
		caller.On("Call", mock.Anything, mock.Anything, mock.Anything).Return(reply, 9, true)

		text, tokens, ok := NewBaseGenerator(caller).Run(context.Background(), Prompt{Stage: StagePage, Text: "p"})

		assert.False(t, ok, "reply %q", reply)
		assert.Empty(t, text)
		assert.Zero(t, tokens)
	}
}
