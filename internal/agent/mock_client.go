package agent

import (
	"context"
	"os"

	"github.com/stretchr/testify/mock"
)

// MockClient is a Caller double for tests.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Call(ctx context.Context, prompt, system string) (string, int, bool) {
	args := m.Called(ctx, prompt, system)
	return args.String(0), args.Int(1), args.Bool(2)
}

// MockSpeaker is a Synthesizer double. When a call succeeds it writes a
// placeholder file to dest so directory checks see real output.
type MockSpeaker struct {
	mock.Mock
}

func (m *MockSpeaker) Synthesize(ctx context.Context, text, dest string) bool {
	args := m.Called(ctx, text, dest)
	ok := args.Bool(0)
	if ok {
		if err := os.WriteFile(dest, []byte("ID3"), 0644); err != nil {
			return false
		}
	}
	return ok
}
