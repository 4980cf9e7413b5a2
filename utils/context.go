package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

func CreateCtxWithRqID(c *gin.Context) context.Context {
	if v, ok := c.Get("rqID"); ok {
		if rqID, ok := v.(string); ok {
			return context.WithValue(c.Request.Context(), rqIDKey{}, rqID)
		}
	}
	return context.WithValue(c.Request.Context(), rqIDKey{}, uuid.NewString())
}
