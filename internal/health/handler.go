package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinHandler returns a gin handler serving the probe of the given kind.
// It answers 200 when the probe passes and 503 otherwise.
func (c *Checker) GinHandler(kind ProbeKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response := c.Run(ctx.Request.Context(), kind)
		ctx.JSON(statusCode(response), response)
	}
}

// RegisterRoutes registers the probe routes on a gin router.
func RegisterRoutes(router gin.IRoutes, checker *Checker) {
	router.GET(PathLiveness, checker.GinHandler(ProbeLiveness))
	router.GET(PathReadiness, checker.GinHandler(ProbeReadiness))
	router.GET(PathStartup, checker.GinHandler(ProbeStartup))
}

func statusCode(response ProbeResponse) int {
	if response.Status == StatusPass {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
