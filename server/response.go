package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/s3gate/errors"
)

// RespondWithError inspects err: if it is an *apperrors.AppError the status and
// structured body are derived automatically; otherwise a generic 500 is sent.
// HEAD requests get the status only. err is attached to the context for the
// request logger.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if c.Request.Method == http.MethodHead {
		c.AbortWithStatus(appErr.HTTPStatus)
		return
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
