package target

import (
	"dao-governance/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SetupRouter wires the target daemon routes.
func SetupRouter(store *Store, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.MaxBodySize(1<<20),
	)

	h := NewHandler(store, log)

	router.GET("/health", h.Health)
	router.POST("/invoke/:method", h.Invoke)

	router.GET("/events", h.ListEvents)
	router.GET("/events/:id", h.GetEvent)
	router.GET("/polls/:id", h.GetPoll)
	router.GET("/exams/:course/:group", h.GetExam)
	router.GET("/nfts", h.ListNFTs)
	router.GET("/nfts/:id", h.GetNFT)

	return router
}
