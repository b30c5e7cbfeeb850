package agent

import (
	"context"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// NoneClient 在没有配置代理时使用，所有调用返回 ErrAgentDisabled
type NoneClient struct{}

func NewNoneClient() *NoneClient { return &NoneClient{} }

func (NoneClient) Name() string { return ProviderNone }

func (NoneClient) GenerateTags(context.Context, string, string) ([]string, error) {
	return nil, constant.ErrAgentDisabled
}

func (NoneClient) Moderate(context.Context, string) (*model.ModerationResult, error) {
	return nil, constant.ErrAgentDisabled
}

func (NoneClient) Rewrite(context.Context, string, string) (string, error) {
	return "", constant.ErrAgentDisabled
}

func (NoneClient) ClassifyBugSeverity(context.Context, string, string) (string, error) {
	return "", constant.ErrAgentDisabled
}

func (NoneClient) DetectIntent(context.Context, string, []string) (*model.Intent, error) {
	return nil, constant.ErrAgentDisabled
}

func (NoneClient) Chat(context.Context, ChatInput) (string, error) {
	return "", constant.ErrAgentDisabled
}
