package util

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"
	"github.com/labstack/echo/v4"
)

// ResponseError turns a failed response into an error carrying the
// server's message.
func ResponseError(resp *resty.Response, errMsg *echo.HTTPError) error {
	if errMsg != nil && errMsg.Message != nil {
		return fmt.Errorf("%v", errMsg.Message)
	}
	return fmt.Errorf("unexpected status: %s", resp.Status())
}

// DecodeError reads an echo.HTTPError out of a raw response body.
func DecodeError(status string, body io.Reader) error {
	var errMsg echo.HTTPError
	if err := json.NewDecoder(body).Decode(&errMsg); err != nil || errMsg.Message == nil {
		return fmt.Errorf("unexpected status: %s", status)
	}
	return fmt.Errorf("%v", errMsg.Message)
}
