package cmd

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/gatehook/internal/config"
	"github.com/nextlevelbuilder/gatehook/internal/discord"
	"github.com/nextlevelbuilder/gatehook/internal/sender"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("OK")
	warnMark = color.New(color.FgYellow).Sprint("WARN")
	failMark = color.New(color.FgRed).Sprint("FAIL")
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and webhook reachability",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("gatehook doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (not found, using defaults and env)")
	} else {
		fmt.Printf(" (%s)\n", okMark)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  Config load error: %s %s\n", failMark, err)
		return
	}

	fmt.Println()
	fmt.Println("  Discord:")
	check("Token:", cfg.Discord.Token != "", "not set (GATEHOOK_DISCORD_TOKEN)")
	if _, err := discord.ParseIntents(cfg.Discord.Intents); err != nil {
		fmt.Printf("    %-14s %s %s\n", "Intents:", failMark, err)
	} else if len(cfg.Discord.Intents) == 0 {
		fmt.Printf("    %-14s %s default (message content is a privileged intent)\n", "Intents:", okMark)
	} else {
		fmt.Printf("    %-14s %s %v\n", "Intents:", okMark, []string(cfg.Discord.Intents))
	}

	fmt.Println()
	fmt.Println("  Webhook:")
	checkWebhook(cfg.Webhook)

	fmt.Println()
	fmt.Println("  Filters:")
	printPolicy("message_direct", cfg.Filters.MessageDirect)
	printPolicy("message_guild", cfg.Filters.MessageGuild)
	printPolicy("reaction_add_direct", cfg.Filters.ReactionAddDirect)
	printPolicy("reaction_add_guild", cfg.Filters.ReactionAddGuild)
	printPolicy("reaction_remove_direct", cfg.Filters.ReactionRemoveDirect)
	printPolicy("reaction_remove_guild", cfg.Filters.ReactionRemoveGuild)

	fmt.Println()
	fmt.Println("  Telemetry:")
	if cfg.Telemetry.Enabled {
		fmt.Printf("    %-14s %s %s (%s)\n", "OTLP:", okMark, cfg.Telemetry.Endpoint, cfg.Telemetry.Protocol)
	} else {
		fmt.Printf("    %-14s disabled\n", "OTLP:")
	}

	fmt.Println()
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Result: %s %s\n", failMark, err)
		return
	}
	fmt.Printf("  Result: %s\n", okMark)
}

func check(label string, ok bool, failDetail string) {
	if ok {
		fmt.Printf("    %-14s %s\n", label, okMark)
		return
	}
	fmt.Printf("    %-14s %s %s\n", label, failMark, failDetail)
}

func checkWebhook(w config.WebhookConfig) {
	if w.URL == "" {
		fmt.Printf("    %-14s %s not set (GATEHOOK_WEBHOOK_URL)\n", "URL:", failMark)
		return
	}
	u, err := url.Parse(w.URL)
	if err != nil || u.Host == "" {
		fmt.Printf("    %-14s %s cannot parse %q\n", "URL:", failMark, w.URL)
		return
	}
	fmt.Printf("    %-14s %s %s\n", "URL:", okMark, u.Redacted())

	req, conn := w.Timeouts()
	fmt.Printf("    %-14s request %s, connect %s\n", "Timeouts:", req, conn)
	fmt.Printf("    %-14s %d bytes\n", "Body limit:", w.BodyLimit())
	if w.InsecureMode {
		fmt.Printf("    %-14s %s TLS verification disabled\n", "TLS:", warnMark)
	}

	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	c, err := net.DialTimeout("tcp", host, conn)
	if err != nil {
		fmt.Printf("    %-14s %s %s\n", "Reachable:", failMark, err)
		return
	}
	c.Close()
	fmt.Printf("    %-14s %s\n", "Reachable:", okMark)
}

func printPolicy(name, raw string) {
	p := sender.ParsePolicy(raw)
	shown := raw
	if shown == "" {
		shown = "(default)"
	}
	fmt.Printf("    %-24s %-18s self=%t webhook=%t system=%t bot=%t user=%t\n",
		name, shown, p.Self, p.Webhook, p.System, p.Bot, p.User)
}
