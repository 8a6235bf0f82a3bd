package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/driprate/driprate/pkg/ratelimit"
	"github.com/driprate/driprate/pkg/storage"
)

type config struct {
	ListenAddr string        `env:"LISTEN_ADDR" envDefault:":8080"`
	Limit      int64         `env:"RATE_LIMIT" envDefault:"5"`
	Period     time.Duration `env:"RATE_PERIOD" envDefault:"1m"`
	Redis      storage.RedisConfig
}

func main() {
	// The .env file is optional; real env vars win either way.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	client, err := storage.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer client.Close()

	store := storage.NewRedis(client, storage.WithPrefix("demo:"))

	limiter, err := ratelimit.New("ip", cfg.Limit, cfg.Period, store)
	if err != nil {
		log.Fatal(err)
	}

	http.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		allowed, err := limiter.Check(r.Context(), r.RemoteAddr)
		if err != nil {
			// Fail Open or Closed? Here we Fail Open (allow traffic on error)
			log.Printf("Limiter error: %v", err)
		} else if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", cfg.Period.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Rate limit exceeded\n"))
			return
		}

		w.Write([]byte("Pong!\n"))
	})

	log.Printf("Server listening on %s (Redis: %s, limit %d per %s)",
		cfg.ListenAddr, cfg.Redis.ConnectionURL, cfg.Limit, cfg.Period)
	if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
		log.Fatal(err)
	}
}
