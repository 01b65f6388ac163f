package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"promenade/client"
	"promenade/domain"
)

// Config defines the viewer-side environment variables.
type Config struct {
	RelayURL        string        `envconfig:"RELAY_URL" default:"ws://localhost:8080/ws"`
	RefreshInterval time.Duration `envconfig:"VIEWER_REFRESH_INTERVAL" default:"2s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		color.Errorln("Config error:", err)
		os.Exit(2)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect as a silent observer: the viewer joins so it receives
	// broadcasts, but it never moves or chats.
	reconciler := client.NewReconciler(nil)
	c, err := client.Dial(ctx, log, config.RelayURL, reconciler)
	if err != nil {
		color.Errorln("Failed to reach relay:", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := c.Join("viewer", domain.Vec3{}, 0, domain.MotionIdle); err != nil {
		color.Errorln("Join failed:", err)
		os.Exit(1)
	}

	color.Greenf("🌐 Watching room at %s (Ctrl+C to quit)\n", config.RelayURL)

	ticker := time.NewTicker(config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			color.Yellowln("Viewer stopped")
			return
		case <-ticker.C:
			render(reconciler)
		}
	}
}

// render prints the current roster and the recent chat tail.
func render(reconciler *client.Reconciler) {
	roster := reconciler.Roster()
	sort.Slice(roster, func(i, j int) bool { return roster[i].DisplayName < roster[j].DisplayName })

	fmt.Print("\033[H\033[2J")
	color.Cyanln("=== Room roster ===")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "X", "Y", "Z", "Yaw", "Motion"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, p := range roster {
		table.Append([]string{
			p.DisplayName,
			fmt.Sprintf("%.1f", p.Position.X),
			fmt.Sprintf("%.1f", p.Position.Y),
			fmt.Sprintf("%.1f", p.Position.Z),
			fmt.Sprintf("%.2f", p.Yaw),
			string(p.Motion),
		})
	}
	table.Render()

	entries := reconciler.ChatHistory()
	if len(entries) == 0 {
		return
	}
	color.Cyanln("=== Recent chat ===")
	start := len(entries) - 10
	if start < 0 {
		start = 0
	}
	for _, entry := range entries[start:] {
		color.Printf("<gray>%s</> <green>%s</>: %s\n",
			entry.At.Format("15:04:05"), entry.DisplayName, entry.Message)
	}
}
