package service

import (
	"errors"
	"fmt"
)

// ErrConfiguration 必填输入缺失或结构化配置无效
var ErrConfiguration = errors.New("配置错误")

// ConfigurationError 配置错误，Message 直接展示给调用方
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// Is 使 errors.Is(err, ErrConfiguration) 成立
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// RejectReason SQL被拒绝的原因
type RejectReason string

const (
	RejectForbiddenKeyword RejectReason = "forbidden_keyword"
	RejectNotSelect        RejectReason = "not_select"
)

// SQLRejectedError SQL安全校验未通过
type SQLRejectedError struct {
	Reason  RejectReason `json:"reason"`
	Keyword string       `json:"keyword,omitempty"`
}

func (e *SQLRejectedError) Error() string {
	if e.Reason == RejectForbiddenKeyword {
		return fmt.Sprintf("不允许执行包含 %s 的SQL语句", e.Keyword)
	}
	return "只允许执行SELECT查询语句"
}

// StorageError 存储层执行失败
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("SQL执行失败: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsSQLRejected 判断是否为SQL安全校验错误
func IsSQLRejected(err error) bool {
	var rejected *SQLRejectedError
	return errors.As(err, &rejected)
}

// IsStorageError 判断是否为存储层错误
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
