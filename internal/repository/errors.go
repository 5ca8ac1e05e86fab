package repository

import "errors"

// 存储层错误，sqlstore 与 postgres 两种实现返回同一组哨兵错误，调用方用 errors.Is 判断
var (
	// ErrNotFound 报表等记录不存在
	ErrNotFound = errors.New("记录不存在")

	// ErrInvalidInput 写入参数缺失或格式错误
	ErrInvalidInput = errors.New("输入参数无效")

	// ErrConnectionFailed 健康检查时数据库不可达
	ErrConnectionFailed = errors.New("数据库连接失败")

	// ErrTimeout 查询超过执行时限
	ErrTimeout = errors.New("操作超时")

	ErrUnsupportedDriver = errors.New("不支持的数据库驱动")
)

// IsNotFound 是否为记录不存在
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput 是否为无效输入
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsConnectionFailed 是否为数据库连接失败
func IsConnectionFailed(err error) bool { return errors.Is(err, ErrConnectionFailed) }

// IsTimeout 是否为查询超时
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }
