package http

import (
	"github.com/gofiber/fiber/v2"
)

type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Path    string `json:"path,omitempty"`
}

// WithRepErrMsg writes an error envelope with the HTTP status derived from code.
func WithRepErrMsg(c *fiber.Ctx, code int, errMsg string, path string) error {
	return c.Status(StatusOf(code)).JSON(ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Path:    path,
	})
}

// WithRepErr writes resp as an error, using errMsg when set and the code's
// default message otherwise.
func WithRepErr(c *fiber.Ctx, resp *Response, errMsg string) error {
	if errMsg == "" {
		errMsg = resp.Msg
	}
	return WithRepErrMsg(c, resp.Code, errMsg, c.Path())
}
