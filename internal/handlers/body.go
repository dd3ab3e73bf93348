package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var errInvalidBody = errors.New("request body is not valid JSON")

// readJSONBody returns the raw request body. An empty body reads as {}.
func readJSONBody(c *gin.Context) (json.RawMessage, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	data, err := c.GetRawData()
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(data) {
		return nil, errInvalidBody
	}
	return json.RawMessage(data), nil
}

// bindBody decodes the body into v and answers 400 or 413 when it cannot.
func bindBody(c *gin.Context, v interface{}) bool {
	body, err := readJSONBody(c)
	if err == nil {
		err = json.Unmarshal(body, v)
	}
	if err != nil {
		respondBodyError(c, err)
		return false
	}
	return true
}

func respondBodyError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.String(http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	c.String(http.StatusBadRequest, "Invalid request body")
}
