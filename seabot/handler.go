package seabot

import (
	"crypto/ed25519"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/botshop/go-seabot/middleware"
)

func handlersInit(router *gin.Engine, bot *Bot, publicKey ed25519.PublicKey) *gin.Engine {
	router.GET("/ping", ping())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/interactions", middleware.DiscordSignatureRequired(publicKey), handleInteraction(bot))
	return router
}

func ping() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ping": "pong"})
	}
}
