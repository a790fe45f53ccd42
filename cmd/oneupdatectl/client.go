package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

type apiError struct {
	Code   int    `json:"code"`
	ErrMsg string `json:"errMsg"`
	Path   string `json:"path"`
}

type apiResponse struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Detail json.RawMessage `json:"detail"`
}

func newClient() *resty.Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(server, "/")+"/api/v1").
		SetTimeout(2*time.Minute).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if token != "" {
		c.SetAuthToken(token)
	}
	return c
}

// call sends one request and writes the indented detail to out.
func call(out io.Writer, method, path string, body any) error {
	req := newClient().R().SetError(&apiError{}).SetResult(&apiResponse{})
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		if e, ok := resp.Error().(*apiError); ok && e.ErrMsg != "" {
			return fmt.Errorf("%s (code %d)", e.ErrMsg, e.Code)
		}
		return fmt.Errorf("request failed: %s", resp.Status())
	}

	res := resp.Result().(*apiResponse)
	if len(res.Detail) == 0 {
		_, err = fmt.Fprintln(out, res.Msg)
		return err
	}
	var v any
	if err := sonic.Unmarshal(res.Detail, &v); err != nil {
		return err
	}
	pretty, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(pretty))
	return err
}
