package common

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
)

const keyRequestBody = "key_request_body"

// GetRequestBody reads the request body once and caches it on the context so
// middleware and handlers can both consume it.
func GetRequestBody(c *gin.Context) ([]byte, error) {
	requestBody, ok := c.Get(keyRequestBody)
	if ok {
		return requestBody.([]byte), nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read request body")
	}
	_ = c.Request.Body.Close()
	c.Set(keyRequestBody, body)
	return body, nil
}

// UnmarshalBodyReusable decodes the request body into v and restores it so a
// later reader observes the full body again.
func UnmarshalBodyReusable(c *gin.Context, v any) error {
	requestBody, err := GetRequestBody(c)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(requestBody, v); err != nil {
		return errors.Wrap(err, "unmarshal request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
	return nil
}
