package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"

	"github.com/aima-hub/internal/config"
	"github.com/aima-hub/internal/provider"
	"github.com/aima-hub/internal/router"

	"go.uber.org/zap"
)

// BuildServer 初始化存储与路由并组装 HTTP 进程，Serve 退出时关闭容器
func BuildServer(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Server, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	engine := router.SetupRouter(cfg, container)
	return NewServer(cfg.Server.Addr(), engine, container, log), container, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	server, container, err := BuildServer(ctx, opts.Config, opts.Logger)
	if err != nil {
		return err
	}
	if err := server.Listen(); err != nil {
		container.Close()
		return fmt.Errorf("listen %s: %w", opts.Config.Server.Addr(), err)
	}

	opts.Logger.Infow("app_start",
		"addr", server.Addr(),
		"store_backend", opts.Config.Store.Backend,
		"redis_enabled", container.RedisClient != nil,
	)
	return server.Serve(ctx, opts.ShutdownTimeout)
}
