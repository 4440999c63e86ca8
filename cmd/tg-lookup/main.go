package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blockedby/groupmeta/internal/config"
	"github.com/blockedby/groupmeta/internal/database"
	"github.com/blockedby/groupmeta/internal/logger"
	"github.com/blockedby/groupmeta/internal/telegram"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: tg-lookup <@username | numeric id>")
		fmt.Println("example: tg-lookup @golang_jobs")
		os.Exit(1)
	}

	ref := parseRef(os.Args[1])
	if ref.IsZero() {
		fmt.Printf("error: %q is neither a username nor a numeric id\n", os.Args[1])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.TGApiID == 0 || cfg.TGApiHash == "" {
		fmt.Println("error: missing required environment variables")
		fmt.Println("please set: TG_API_ID, TG_API_HASH")
		os.Exit(1)
	}
	if err := logger.Init("warn", ""); err != nil {
		fmt.Printf("error: failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.SessionDB)
	if err != nil {
		fmt.Printf("error opening session database: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	manager := telegram.NewManager(cfg, db)
	if err := manager.Init(ctx); err != nil {
		fmt.Printf("error initializing telegram client: %v\n", err)
		os.Exit(1)
	}
	if manager.GetStatus() != telegram.StatusReady {
		fmt.Println("error: no telegram session found, run tg-auth first")
		os.Exit(1)
	}

	client := telegram.NewClient(manager, cfg)
	defer client.Close()

	fmt.Printf("looking up %s...\n\n", ref.String())

	info, err := client.GetGroupInfo(ctx, ref)
	if err != nil {
		fmt.Printf("lookup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("id:              %d\n", info.ID)
	fmt.Printf("title:           %s\n", info.Title)
	if info.Username != "" {
		fmt.Printf("username:        @%s\n", info.Username)
	}
	fmt.Printf("type:            %s\n", info.Type)
	fmt.Printf("members:         %d\n", info.MembersCount)
	if info.OnlineCount > 0 {
		fmt.Printf("online:          %d\n", info.OnlineCount)
	}
	if info.SlowModeDelay > 0 {
		fmt.Printf("slow mode delay: %ds\n", info.SlowModeDelay)
	}
}

func parseRef(arg string) telegram.GroupRef {
	arg = strings.TrimSpace(arg)
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		return telegram.GroupRef{ID: id}
	}
	return telegram.GroupRef{Username: strings.TrimPrefix(arg, "@")}
}
