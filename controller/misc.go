package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatpp/relay/common"
	"github.com/chatpp/relay/common/config"
)

func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"error": false,
		"data": gin.H{
			"access_type":   config.AccessType,
			"redis_enabled": common.IsRedisEnabled(),
		},
	})
}
