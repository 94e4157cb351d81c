package http

import "github.com/gin-gonic/gin"

// Register registers the symptom lookup routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/diseases", h.FindDiseases)
	rg.POST("/seed", h.ReloadSeed)
}
