// Package httputil contains helpers shared by all HTTP handlers.
package httputil

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrRequestBodyEmpty is returned when a request body is required but empty.
var ErrRequestBodyEmpty = errors.New("the request body must not be empty")

// BindData binds the JSON request body to the struct passed in data.
func BindData(c *gin.Context, data any) error {
	if err := c.ShouldBindJSON(data); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrRequestBodyEmpty
		}

		log.Debug().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err)
		return err
	}

	return nil
}

func OptionsGet(c *gin.Context) {
	c.Header("allow", "GET")
	c.Status(http.StatusNoContent)
}

func OptionsPost(c *gin.Context) {
	c.Header("allow", "POST")
	c.Status(http.StatusNoContent)
}

func OptionsGetPost(c *gin.Context) {
	c.Header("allow", "GET, POST")
	c.Status(http.StatusNoContent)
}

func OptionsGetDelete(c *gin.Context) {
	c.Header("allow", "GET, DELETE")
	c.Status(http.StatusNoContent)
}
