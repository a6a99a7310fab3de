package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	APIURL     string
	TokenDB    string
	LogLevel   string

	EventsBrokers []string
	EventsTopic   string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		ListenAddr: getenv("LISTEN_ADDR", ":3000"),
		APIURL:     must(os.Getenv("API_URL"), "API_URL"),
		TokenDB:    getenv("TOKEN_DB", "speakerhub.db"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		EventsBrokers: csv(os.Getenv("EVENTS_BROKERS")),
		EventsTopic:   getenv("EVENTS_TOPIC", "frontend_events"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
