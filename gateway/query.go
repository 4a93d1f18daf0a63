package gateway

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/s3gate/errors"
	"github.com/kbukum/s3gate/validation"
)

// listQuery holds the parsed listing parameters.
type listQuery struct {
	Folder   string `form:"folder"`
	Prettify bool   `form:"prettify"`
}

// Prefix is the folder without surrounding slashes plus one trailing slash.
func (q listQuery) Prefix() string {
	return strings.Trim(q.Folder, "/") + "/"
}

// getQuery holds the parsed retrieval parameters.
type getQuery struct {
	Expiry   int  `form:"expiry" validate:"gt=600,lte=3024000"`
	ReadMeta bool `form:"read_meta"`
}

func parseListQuery(c *gin.Context, s Settings) (listQuery, error) {
	q := listQuery{Folder: c.DefaultQuery("folder", s.DefaultFolder)}
	var err error
	if q.Prettify, err = queryBool(c, "prettify", false); err != nil {
		return q, err
	}
	return q, nil
}

// parseGetQuery applies defaults and validates before any provider call.
func parseGetQuery(c *gin.Context, s Settings) (getQuery, error) {
	q := getQuery{Expiry: s.DefaultExpiry}
	if raw, ok := c.GetQuery("expiry"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return q, errors.InvalidInput("expiry", "expiry must be an integer number of seconds")
		}
		q.Expiry = n
	}
	var err error
	if q.ReadMeta, err = queryBool(c, "read_meta", true); err != nil {
		return q, err
	}
	if err := validation.Validate(q); err != nil {
		return q, err
	}
	return q, nil
}

// queryBool parses a boolean query parameter, accepting 1/0, true/false,
// yes/no and on/off in any case.
func queryBool(c *gin.Context, name string, def bool) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return def, errors.InvalidInput(name, name+" must be a boolean")
}
