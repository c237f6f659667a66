package magicpix

import (
	"context"
	"sync"
)

// MockGateway is a mock implementation of Gateway that records its calls.
type MockGateway struct {
	GenerateFunc func(ctx context.Context, prompt string) Result
	EditFunc     func(ctx context.Context, payload, instruction string) Result
	Info         ModelInfo

	mu            sync.Mutex
	GenerateCalls []string
	EditCalls     []editCall
}

type editCall struct {
	Payload     string
	Instruction string
}

func (m *MockGateway) Generate(ctx context.Context, prompt string) Result {
	m.mu.Lock()
	m.GenerateCalls = append(m.GenerateCalls, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return ImageResult("data:image/png;base64,R0VO", "")
}

func (m *MockGateway) Edit(ctx context.Context, payload, instruction string) Result {
	m.mu.Lock()
	m.EditCalls = append(m.EditCalls, editCall{Payload: payload, Instruction: instruction})
	m.mu.Unlock()

	if m.EditFunc != nil {
		return m.EditFunc(ctx, payload, instruction)
	}
	return ImageResult("data:image/png;base64,RURJVA==", "")
}

func (m *MockGateway) Model() ModelInfo {
	return m.Info
}

func (m *MockGateway) Close() error {
	return nil
}

func (m *MockGateway) calls() (generate, edit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls), len(m.EditCalls)
}
