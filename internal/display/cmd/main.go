// Command display is a standalone player view: it dials the console's
// WebSocket endpoint, announces readiness and renders the latest snapshot to
// the terminal. Read-only by construction; its only outbound traffic is the
// ready signal and the scoreboard dismiss gesture.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/quizfriends/quizmaster/internal/broadcast"
	"github.com/quizfriends/quizmaster/internal/display"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	url := getEnv("CONSOLE_URL", "ws://localhost:8080/ws/display")
	consoleOrigin := getEnv("CONSOLE_ORIGIN", "quizmaster-console")
	displayOrigin := getEnv("DISPLAY_ORIGIN", "quizmaster-display")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := broadcast.Dial(ctx, url, consoleOrigin)
	if err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("failed to reach console")
	}
	defer client.Close()

	view := display.NewView(client, consoleOrigin, displayOrigin)
	go view.Run(ctx)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			render(view)
		}
	}
}

func render(view *display.View) {
	state, ok := view.Snapshot()
	if !ok {
		fmt.Println("waiting for the game master...")
		return
	}

	fmt.Printf("phase: %s\n", state.Phase)
	if q := view.DisplayedQuestion(); q != nil {
		fmt.Printf("question: %s\n%s\n", q.Title, q.Content)
	}
	if t := view.Timer(); t.InitialTime > 0 {
		fmt.Printf("time: %d/%d\n", t.TimeRemaining, t.InitialTime)
	}
	for _, row := range view.ScoreboardRows() {
		fmt.Printf("  %s  %d\n", row.Name, row.Score)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
