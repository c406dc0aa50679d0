package dto

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/errors"
)

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO 错误信息 DTO
type ErrorDTO struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 创建错误响应
// 预测失败只返回统一的提示文案，原始原因仅写入日志
func ErrorResponse(err error, requestID string) *APIResponse {
	var errorDTO *ErrorDTO

	appErr, ok := errors.As(err)
	switch {
	case ok && errors.IsPredictionFailure(err):
		errorDTO = &ErrorDTO{
			Code:        string(appErr.Code()),
			Message:     constants.GenericPredictionErrorMessage,
			Description: appErr.Description(),
		}
	case ok:
		errorDTO = &ErrorDTO{
			Code:        string(appErr.Code()),
			Message:     messageOf(appErr),
			Description: appErr.Description(),
			Details:     publicDetails(appErr.Metadata()),
		}
	default:
		errorDTO = &ErrorDTO{
			Code:        string(constants.ErrCodeInternal),
			Message:     "Internal server error",
			Description: "The server encountered an unexpected condition.",
		}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// SendSuccess writes a 200 envelope.
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse(data, requestIDOf(c)))
}

// SendError writes err with the status mapped from its code.
func SendError(c *gin.Context, err error) {
	if err == nil {
		err = errors.ErrInternal("unknown error")
	}
	_ = c.Error(err)
	c.JSON(errors.HTTPStatusOf(err), ErrorResponse(err, requestIDOf(c)))
}

func requestIDOf(c *gin.Context) string {
	if id := c.GetString(string(constants.ContextKeyRequestID)); id != "" {
		return id
	}
	return c.GetHeader(constants.RequestIDHeader)
}

// messageOf drops the cause that Error() appends.
func messageOf(appErr errors.AppError) string {
	msg := appErr.Error()
	if cause := appErr.Unwrap(); cause != nil {
		msg = strings.TrimSuffix(msg, ": "+cause.Error())
	}
	return msg
}

func publicDetails(meta map[string]interface{}) map[string]interface{} {
	if len(meta) == 0 {
		return nil
	}
	return meta
}

//Personal.AI order the ending
