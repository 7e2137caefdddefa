package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizfriends/quizmaster/internal/broadcast"
	"github.com/quizfriends/quizmaster/internal/console"
	"github.com/quizfriends/quizmaster/internal/questions"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := loadConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	hubCfg := broadcast.DefaultHubConfig(cfg.DisplayOrigin)
	hubCfg.InboundBuffer = cfg.InboundBuffer
	hub := broadcast.NewHub(hubCfg)

	gm := console.New(console.Config{
		Transport:     hub,
		Origin:        cfg.ConsoleOrigin,
		DisplayOrigin: cfg.DisplayOrigin,
	})

	if cfg.GameDataPath != "" {
		f, err := os.Open(cfg.GameDataPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.GameDataPath).Msg("failed to open game data")
		}
		data, err := questions.LoadGameData(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.GameDataPath).Msg("failed to load game data")
		}
		gm.LoadGameData(data)
		log.Info().
			Int("players", len(data.Players)).
			Int("teams", len(data.Teams)).
			Int("questions", len(data.Questions)).
			Msg("game data loaded")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go gm.Run(ctx)

	srv := setupServer(cfg, hub)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("quizmaster console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down")
	// Timer first so no tick fires into a disposed store; the hub close
	// inside gm.Close drops every display connection.
	if err := gm.Close(); err != nil {
		log.Error().Err(err).Msg("console shutdown error")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
}
