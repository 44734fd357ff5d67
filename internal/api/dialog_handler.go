package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatlearn/internal/dialog"
)

// DialogHandler adapts webhook POSTs to the dialog engine. The request
// body is one flat JSON object; the response is whatever the action
// resolved to, with errors carried as {errMsg, httpStatus}.
func DialogHandler(reg *dialog.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params dialog.Params
		if err := c.ShouldBindJSON(&params); err != nil {
			status := http.StatusBadRequest
			c.JSON(status, dialog.ErrResult{
				ErrMsg:     "request body is not valid JSON",
				HTTPStatus: &status,
			})
			return
		}
		if action := params.Str("action"); action != "" {
			c.Set("action", action)
		}
		engine, ok := reg.Lookup(c.Param("serviceName"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service handling failed or service not found"})
			return
		}
		result := engine.Dispatch(c.Request.Context(), params)
		if errRes, failed := result.(*dialog.ErrResult); failed {
			status := http.StatusInternalServerError
			if errRes.HTTPStatus != nil {
				status = *errRes.HTTPStatus
			}
			c.JSON(status, errRes)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
