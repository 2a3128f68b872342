package response

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// AppError 接口层错误：业务码、i18n key、已翻译消息与原始错误
type AppError struct {
	Code    int
	Key     string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Key
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建接口层错误
func NewAppError(code int, key string, err error) *AppError {
	return &AppError{Code: code, Key: key, Err: err}
}

// WithMessage 设置已翻译的消息
func (e *AppError) WithMessage(msg string) *AppError {
	e.Message = msg
	return e
}

// AsAppError 从错误链中提取 AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return nil, false
}

// Fail 按 AppError 写出错误响应
func Fail(c *gin.Context, appErr *AppError) {
	if appErr == nil {
		Error(c, CodeInternal, "")
		return
	}
	msg := appErr.Message
	if msg == "" {
		msg = appErr.Key
	}
	Error(c, appErr.Code, msg)
}
