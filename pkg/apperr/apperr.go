package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
// 调用方根据类别决定处理方式：Transient可重试，其余重试无意义
type Kind int

const (
	KindUnknown      Kind = iota
	KindValidation        // 输入不合法
	KindConflict          // 与当前状态冲突（重复请求、已是好友等）
	KindNotFound          // 资源不存在
	KindUnauthorized      // 操作者与资源不匹配
	KindTransient         // 存储暂时不可用，可重试
)

// 稳定的业务错误码，接口层原样返回给调用方
const (
	CodeInvalidMessage   = "InvalidMessage"
	CodeAlreadyFriends   = "AlreadyFriends"
	CodeDuplicateRequest = "DuplicateRequest"
	CodeNotFound         = "NotFound"
	CodeNotAuthorized    = "NotAuthorized"
	CodeValidation       = "Validation"
	CodeTransient        = "Transient"
)

// Error 带类别和业务码的错误
// Err 保留底层原因，仅用于日志，不对外暴露
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建业务错误
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation 输入校验错误
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Conflict 状态冲突错误
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// NotFound 资源不存在错误
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: message}
}

// Unauthorized 操作者不匹配错误
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeNotAuthorized, Message: message}
}

// Transient 存储暂时不可用，包装底层错误供日志使用
func Transient(message string, err error) *Error {
	return &Error{Kind: KindTransient, Code: CodeTransient, Message: message, Err: err}
}

// KindOf 提取错误类别，非业务错误归为Unknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf 提取业务错误码
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// MessageOf 提取对外展示的错误消息，未知错误返回兜底文案
// 内部存储错误不会原样透出
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
