package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"

	"promenade/client"
	"promenade/domain"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the bot-side environment variables.
type Config struct {
	RelayURL     string        `envconfig:"RELAY_URL" default:"ws://localhost:8080/ws"`
	Name         string        `envconfig:"BOT_NAME"`
	MoveInterval time.Duration `envconfig:"BOT_MOVE_INTERVAL" default:"500ms"`
	ChatEvery    int           `envconfig:"BOT_CHAT_EVERY" default:"30"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"INFO"`
}

var phrases = []string{
	"hello everyone",
	"nice spot over here",
	"anyone seen the floating orb?",
	"brb",
	"walking in circles again",
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bot error: %v\n", err)
	}
	os.Exit(code)
}

// run connects a scripted participant that wanders the room and chats
// occasionally. It exercises the full join/move/chat path end to end.
func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconciler := client.NewReconciler(nil)
	c, err := client.Dial(ctx, log, config.RelayURL, reconciler)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = c.Close()
	}()

	position := domain.Vec3{X: rand.Float64()*4 - 2, Z: rand.Float64()*4 - 2}
	yaw := rand.Float64() * 2 * math.Pi

	if err := c.Join(config.Name, position, yaw, domain.MotionIdle); err != nil {
		return exitRuntime, err
	}
	log.Info("Joined the room", "relay", config.RelayURL)

	ticker := time.NewTicker(config.MoveInterval)
	defer ticker.Stop()

	moves := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("Bot stopping")
			return exitOK, nil
		case <-ticker.C:
			// Random walk: drift the heading, step forward, clamp to the room
			yaw += (rand.Float64() - 0.5) * 0.8
			position.X = clamp(position.X+math.Sin(yaw)*0.3, -8, 8)
			position.Z = clamp(position.Z+math.Cos(yaw)*0.3, -8, 8)

			if err := c.Move(position, yaw, domain.MotionWalkForward); err != nil {
				return exitRuntime, fmt.Errorf("move failed: %w", err)
			}

			moves++
			if config.ChatEvery > 0 && moves%config.ChatEvery == 0 {
				if err := c.Chat(phrases[rand.Intn(len(phrases))]); err != nil {
					return exitRuntime, fmt.Errorf("chat failed: %w", err)
				}
			}
		}
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
