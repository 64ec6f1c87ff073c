package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/aima-hub/internal/config"
	"github.com/aima-hub/internal/logger"
	"github.com/aima-hub/internal/provider"
	"github.com/aima-hub/internal/seed"
	"github.com/aima-hub/internal/service"
)

func main() {
	var hashPassword string
	flag.StringVar(&hashPassword, "hash", "", "输出口令的 bcrypt 哈希，用于 admin.password_hash")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if hashPassword != "" {
		hash, err := service.HashPassword(hashPassword)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	ctx := context.Background()
	container, err := provider.NewContainer(ctx, cfg)
	if err != nil {
		stdLog.Fatalf("Failed to init store: %v", err)
	}
	defer container.Close()

	created, err := seed.Run(ctx, container.ArticleService)
	if err != nil {
		stdLog.Fatalf("Failed to seed articles: %v", err)
	}
	fmt.Printf("Seed completed: %d articles created (backend=%s)\n", created, cfg.Store.Backend)
}
