package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/config"
	dbpkg "github.com/gymtrack/gymtrack-api/internal/db"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	blacklist := auth.NewRedisBlacklist(cfg.RedisAddr, cfg.RedisPassword)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, tokens, blacklist)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
