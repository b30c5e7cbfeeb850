package agent

import (
	"errors"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
)

// TransientError 表示可以重试的临时错误 (5xx、429、网络超时)
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }
func (e *TransientError) Unwrap() error { return e.err }

// Is 让调用方可以用 errors.Is(err, constant.ErrAgentUnavailable) 统一判断
func (e *TransientError) Is(target error) bool { return target == constant.ErrAgentUnavailable }

func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError 表示重试也不会成功的错误 (4xx、响应无法解析)
type FatalError struct {
	err error
}

func (e *FatalError) Error() string { return e.err.Error() }
func (e *FatalError) Unwrap() error { return e.err }
func (e *FatalError) Is(target error) bool { return target == constant.ErrAgentUnavailable }

func NewFatalError(err error) error {
	return &FatalError{err: err}
}

func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
