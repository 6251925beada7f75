// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/makao/internal/auth"
	"github.com/jason-s-yu/makao/internal/cache"
	"github.com/jason-s-yu/makao/internal/database"
	"github.com/jason-s-yu/makao/internal/handlers"
	"github.com/jason-s-yu/makao/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Turn logging degrades gracefully when Redis is absent.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, turn history disabled: %v", err)
	}

	gs := handlers.NewGameServer(logger)
	if secs, err := strconv.Atoi(os.Getenv("MAKAO_TURN_SECONDS")); err == nil && secs > 0 {
		gs.Orch.TurnDuration = time.Duration(secs) * time.Second
	}

	mux := http.NewServeMux()

	mux.Handle("/auth/guest", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GuestHandler,
	)))
	mux.Handle("/session/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateSessionHandler(gs),
	)))
	mux.Handle("/session/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.SessionWSHandler(logger, gs),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
