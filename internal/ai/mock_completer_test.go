package ai

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCompleter 模拟大模型客户端
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) Provider() string { return "mock" }
