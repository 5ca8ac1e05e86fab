package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nlquery-go/internal/ai"
	"nlquery-go/internal/middleware"
	"nlquery-go/internal/repository"
	"nlquery-go/internal/service"
)

// 错误码
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeTimeout        = "TIMEOUT"
	CodeInternalError  = "INTERNAL_ERROR"
)

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Code      string `json:"code" example:"INVALID_REQUEST"`
	Message   string `json:"message" example:"请求参数格式错误"`
	Details   string `json:"details,omitempty" example:"validation failed"`
	Timestamp string `json:"timestamp" example:"2026-01-08T12:00:00Z"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse 创建标准错误响应
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// DataResponse 成功响应
type DataResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, DataResponse{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, code, message string, details ...string) {
	resp := NewErrorResponse(code, message)
	resp.RequestID = middleware.GetRequestID(c)
	if len(details) > 0 {
		resp.Details = details[0]
	}
	c.JSON(status, resp)
}

// statusForError 按错误类别映射HTTP状态码
// 输入校验与SQL拦截为400，资源不存在为404，其余为500
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrConfiguration),
		errors.Is(err, ai.ErrEmptyQuery),
		errors.Is(err, ai.ErrNoTableRecognized),
		service.IsSQLRejected(err),
		repository.IsInvalidInput(err):
		return http.StatusBadRequest
	case repository.IsNotFound(err):
		return http.StatusNotFound
	case repository.IsTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusGatewayTimeout:
		return CodeTimeout
	default:
		return CodeInternalError
	}
}

// respondServiceError 将服务层错误写为统一错误响应
func respondServiceError(c *gin.Context, err error) {
	status := statusForError(err)
	respondError(c, status, codeForStatus(status), err.Error())
}
