package main

import (
	"os"
	"strconv"
)

// Config is the environment-driven configuration of the quizmaster binary.
type Config struct {
	// Port the HTTP server (WebSocket endpoint, health check) listens on.
	Port string
	// ConsoleOrigin is stamped onto outbound snapshots.
	ConsoleOrigin string
	// DisplayOrigin is the only origin accepted on reverse messages.
	DisplayOrigin string
	// GameDataPath optionally preloads players, teams and questions from a
	// YAML file at startup.
	GameDataPath string
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string
	// InboundBuffer bounds the reverse-channel queue.
	InboundBuffer int
}

func loadConfig() Config {
	return Config{
		Port:          getEnv("PORT", "8080"),
		ConsoleOrigin: getEnv("CONSOLE_ORIGIN", "quizmaster-console"),
		DisplayOrigin: getEnv("DISPLAY_ORIGIN", "quizmaster-display"),
		GameDataPath:  getEnv("GAME_DATA_PATH", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		InboundBuffer: getEnvAsInt("INBOUND_BUFFER", 64),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
