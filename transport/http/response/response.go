// Package response 统一的 JSON 响应信封：{"code":..,"data":..,"message":..}
package response

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authkit/errors"
)

const (
	defaultSuccessMessage = "success"
	successCode           = http.StatusOK

	defaultErrorMessage = "service temporarily unavailable"
	defaultErrorCode    = http.StatusServiceUnavailable
)

// Response 响应信封
type Response struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r *Response) reset() {
	r.Code = 0
	r.Data = nil
	r.Message = ""
}

var responsePool = sync.Pool{
	New: func() any {
		return &Response{}
	},
}

func acquire() *Response {
	return responsePool.Get().(*Response)
}

func release(r *Response) {
	r.reset()
	responsePool.Put(r)
}

// GinJSON 写入成功响应
func GinJSON(c *gin.Context, data any) {
	resp := acquire()
	defer release(resp)

	resp.Code = successCode
	resp.Data = data
	resp.Message = defaultSuccessMessage
	c.JSON(http.StatusOK, resp)
}

// GinJSONE 写入错误响应并中止后续处理。
// 业务码与消息取自 errors.FromError，底层原因不输出；
// 业务码为 4xx/5xx 时同时作为 HTTP 状态码，其余业务码使用 200。
func GinJSONE(c *gin.Context, err error) {
	defer c.Abort()

	resp := acquire()
	defer release(resp)

	if err == nil {
		resp.Code, resp.Message = defaultErrorCode, defaultErrorMessage
	} else {
		e := errors.FromError(err)
		resp.Code, resp.Message = e.Code, e.Message
	}
	c.JSON(StatusFor(resp.Code), resp)
}

// StatusFor 业务码对应的 HTTP 状态码
func StatusFor(code int) int {
	if code >= http.StatusBadRequest && code <= 599 {
		return code
	}
	return http.StatusOK
}
