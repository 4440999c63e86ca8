package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/glebarez/sqlite"
	"github.com/mdp/qrterminal/v3"

	"github.com/blockedby/groupmeta/internal/config"
	"github.com/blockedby/groupmeta/internal/database"
	"github.com/blockedby/groupmeta/internal/logger"
	"github.com/blockedby/groupmeta/internal/telegram"
)

func main() {
	fmt.Println("=== telegram auth tool ===")
	fmt.Println("this tool creates the session the enricher needs to call the telegram api")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init("warn", ""); err != nil {
		fmt.Printf("error: failed to init logger: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	fillAPICredentials(cfg, reader)

	fmt.Println("choose authentication method:")
	fmt.Println("  1. scan a QR code with the telegram app (recommended)")
	fmt.Println("  2. authenticate with phone number (sms/code)")
	fmt.Print("\nenter choice [1]: ")

	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)

	var client *gotgproto.Client
	if choice == "2" {
		client, err = authWithPhone(cfg, reader)
	} else {
		client, err = authWithQR(cfg)
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	defer client.Stop()

	sessionString, err := client.ExportStringSession()
	if err != nil {
		fmt.Printf("error exporting session: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n✓ authentication successful!")
	fmt.Printf("logged in as: @%s\n", client.Self.Username)
	fmt.Printf("session saved to: %s\n", cfg.SessionDB)
	fmt.Println("\nyour session string (optional, for TG_SESSION_STRING):")
	fmt.Println("---")
	fmt.Println(sessionString)
	fmt.Println("---")
	fmt.Println("\n⚠️  keep this secret! it provides full access to your telegram account")
}

// fillAPICredentials prompts for api_id and api_hash when the env lacks them.
func fillAPICredentials(cfg *config.Config, reader *bufio.Reader) {
	if cfg.TGApiID == 0 {
		fmt.Print("enter your api_id (from https://my.telegram.org): ")
		raw, _ := reader.ReadString('\n')
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			fmt.Printf("error: invalid api_id: %v\n", err)
			os.Exit(1)
		}
		cfg.TGApiID = id
	}
	if cfg.TGApiHash == "" {
		fmt.Print("enter your api_hash: ")
		raw, _ := reader.ReadString('\n')
		cfg.TGApiHash = strings.TrimSpace(raw)
	}
}

// authWithQR runs the QR login flow and returns a client bound to the saved
// session.
func authWithQR(cfg *config.Config) (*gotgproto.Client, error) {
	db, err := database.Open(cfg.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	manager := telegram.NewManager(cfg, db)
	err = manager.StartQR(ctx, func(url string) {
		fmt.Println("\nscan this QR code with telegram (settings -> devices -> link desktop device):")
		fmt.Println()
		qrterminal.GenerateWithConfig(url, qrterminal.Config{
			Level:      qrterminal.L,
			Writer:     os.Stdout,
			HalfBlocks: true,
		})
		fmt.Println("\nwaiting for scan... (ctrl+c to abort)")
	})
	if err != nil {
		return nil, err
	}

	client := manager.GetClient()
	if client == nil {
		return nil, fmt.Errorf("client not ready after QR login")
	}
	return client, nil
}

// authWithPhone authenticates using phone number (SMS/code). gotgproto
// drives the interactive prompt itself.
func authWithPhone(cfg *config.Config, reader *bufio.Reader) (*gotgproto.Client, error) {
	fmt.Print("enter your phone number (with country code, e.g. +1234567890): ")
	phone, _ := reader.ReadString('\n')
	phone = strings.TrimSpace(phone)

	fmt.Println("\nauthenticating... (check telegram for code)")

	return gotgproto.NewClient(
		cfg.TGApiID,
		cfg.TGApiHash,
		gotgproto.ClientTypePhone(phone),
		&gotgproto.ClientOpts{
			Session:          sessionMaker.SqlSession(sqlite.Open(cfg.SessionDB)),
			DisableCopyright: true,
		},
	)
}
