package controller

import (
	"github.com/gin-gonic/gin"

	relaycontroller "github.com/chatpp/relay/relay/controller"
)

// ChatStream relays a chat completion and streams text deltas back as plain
// text chunks.
func ChatStream(c *gin.Context) {
	relaycontroller.RelayChat(c, true)
}

// Chat relays a chat completion and returns the full message in one response.
func Chat(c *gin.Context) {
	relaycontroller.RelayChat(c, false)
}
