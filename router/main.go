package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatpp/relay/common/config"
)

func SetRouter(router *gin.Engine) {
	SetApiRouter(router)
	if config.EnablePrometheusMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
