package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/immxrtalbeast/roomkeeper/internal/service"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
)

// writeError maps a business failure to its status. Anything else is an
// infrastructure failure and its message stays in the logs.
func writeError(ctx *gin.Context, log *slog.Logger, err error) {
	kind, ok := service.KindOf(err)
	if !ok {
		log.Error("request failed",
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.FullPath()),
			sl.Err(err),
		)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case service.KindUnauthenticated:
		status = http.StatusUnauthorized
	case service.KindBadRequest:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindForbidden:
		status = http.StatusForbidden
	}
	ctx.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badBody(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

func success(ctx *gin.Context, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	ctx.JSON(http.StatusOK, body)
}
