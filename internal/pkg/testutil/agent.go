package testutil

import (
	"context"
	"sync"

	"github.com/anzhiyu-c/ibbs/internal/infra/agent"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// MockAgent 是线程安全的 agent.Client 替身。
// Err 不为 nil 时所有调用都返回它；否则返回对应字段的预设结果。
type MockAgent struct {
	mu sync.Mutex

	Err        error
	Tags       []string
	Moderation *model.ModerationResult
	Rewritten  string
	Severity   string
	Intent     *model.Intent
	Reply      string

	Calls     []string
	LastChat  agent.ChatInput
	LastStyle string
}

var _ agent.Client = (*MockAgent)(nil)

func (m *MockAgent) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
	return m.Err
}

// CallCount 返回某个操作被调用的次数
func (m *MockAgent) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockAgent) Name() string { return "mock" }

func (m *MockAgent) GenerateTags(context.Context, string, string) ([]string, error) {
	if err := m.record("tags"); err != nil {
		return nil, err
	}
	return m.Tags, nil
}

func (m *MockAgent) Moderate(context.Context, string) (*model.ModerationResult, error) {
	if err := m.record("moderation"); err != nil {
		return nil, err
	}
	if m.Moderation == nil {
		return &model.ModerationResult{}, nil
	}
	return m.Moderation, nil
}

func (m *MockAgent) Rewrite(_ context.Context, text, style string) (string, error) {
	if err := m.record("rewrite"); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.LastStyle = style
	m.mu.Unlock()
	if m.Rewritten == "" {
		return text, nil
	}
	return m.Rewritten, nil
}

func (m *MockAgent) ClassifyBugSeverity(context.Context, string, string) (string, error) {
	if err := m.record("bug-severity"); err != nil {
		return "", err
	}
	return m.Severity, nil
}

func (m *MockAgent) DetectIntent(context.Context, string, []string) (*model.Intent, error) {
	if err := m.record("intent"); err != nil {
		return nil, err
	}
	if m.Intent == nil {
		return &model.Intent{}, nil
	}
	return m.Intent, nil
}

func (m *MockAgent) Chat(_ context.Context, in agent.ChatInput) (string, error) {
	if err := m.record("chat"); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.LastChat = in
	m.mu.Unlock()
	return m.Reply, nil
}
