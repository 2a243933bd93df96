package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jirapat-s/ticketline/internal/middleware"
	"github.com/jirapat-s/ticketline/pkg/logger"
	"github.com/jirapat-s/ticketline/pkg/response"
)

// internalError logs the fault with the request id and answers with a
// generic body. Error detail stays in the logs, never in the response.
func internalError(c *gin.Context, msg string, err error) {
	logger.Get().Error(msg,
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, response.InternalError("An internal error occurred"))
}
