package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/chatpp/relay/controller"
	"github.com/chatpp/relay/middleware"
)

func SetApiRouter(router *gin.Engine) {
	apiRouter := router.Group("/api")
	apiRouter.Use(middleware.CORS())
	{
		apiRouter.GET("/status", gzip.Gzip(gzip.DefaultCompression), controller.GetStatus)

		relayRoute := apiRouter.Group("")
		relayRoute.Use(middleware.RelayAuth())
		{
			relayRoute.POST("/chat-stream", controller.ChatStream)
			relayRoute.POST("/chat", controller.Chat)
		}

		// Balance queries carry no quota gate: exhausted accounts must still
		// be able to read their counters.
		apiRouter.POST("/account", middleware.AccountAuth(), controller.GetAccount)

		adminRoute := apiRouter.Group("")
		adminRoute.Use(middleware.AdminAuth())
		{
			adminRoute.POST("/topup", controller.Topup)
		}
	}
}
