package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/devflow-backend/config"
	"github.com/vnkhanh/devflow-backend/routes"
	"github.com/vnkhanh/devflow-backend/utils"
	"github.com/vnkhanh/devflow-backend/ws"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using process environment")
	}

	settings := config.Load()
	utils.InitLogger(settings.LogLevel)

	if settings.AuthSecret == "" {
		logrus.Warn("AUTH_SECRET is empty, every protected route will answer 401")
	}

	config.InitDB(settings)

	r := gin.Default()

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     settings.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r = routes.SetupRouter(r, config.DB, ws.H, settings)

	logrus.WithField("port", settings.Port).Info("server running")
	if err := r.Run(":" + settings.Port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
