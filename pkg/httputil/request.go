package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/doctora/clinic-api/pkg/errors"
)

// ParamInt64 parses a positive integer path parameter.
func ParamInt64(c *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, errors.Validation("invalid " + name + " parameter")
	}
	return v, nil
}

// QueryInt returns an integer query parameter or the fallback when absent
// or malformed.
func QueryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}
