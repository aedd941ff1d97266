package api

import (
	"github.com/gin-gonic/gin"
)

func registerRoutes(router *gin.RouterGroup, c Controller) {
	router.GET("/status", Status(c))
	router.GET("/log", Log(c))
	router.POST("/stop", Stop(c))
}
