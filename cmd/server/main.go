package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/realtime"
	"github.com/cyberyard-io/cyberyard/internal/redis"
	"github.com/cyberyard-io/cyberyard/internal/render"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	env := LoadEnvironment()

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	if env.MQTTBrokerURL != "" {
		realtime.SetBrokerURL(env.MQTTBrokerURL)
	}
	defer realtime.Cleanup()

	store := db.NewStore()
	storageSystem := InitStorage(env)
	renderer := render.NewClient(env.RenderAPIURL, env.RenderAPIKey)

	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	RegisterRoutes(r, env, store, storageSystem, renderer)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
