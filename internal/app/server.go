package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// closer 关闭时释放的资源，通常为 provider.Container
type closer interface {
	Close()
}

// Server 内容服务的 HTTP 进程：监听、优雅关闭并在退出时释放存储资源
type Server struct {
	http     *http.Server
	listener net.Listener
	closer   closer
	log      *zap.SugaredLogger
}

// NewServer 创建 HTTP 进程
func NewServer(addr string, handler http.Handler, resources closer, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		closer: resources,
		log:    log,
	}
}

// Listen 绑定监听地址，端口占用等错误在这里同步返回
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// Addr 实际监听地址，未监听时返回配置地址
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

// Serve 处理请求直到 ctx 结束或服务出错，随后优雅关闭并释放资源
func (s *Server) Serve(ctx context.Context, shutdownTimeout time.Duration) error {
	defer s.release()
	if err := s.Listen(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(s.listener)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(stopCtx); err != nil {
		s.log.Errorw("http_shutdown_failed", "error", err)
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}

func (s *Server) release() {
	if s.closer != nil {
		s.closer.Close()
	}
	s.log.Infow("app_stopped", "addr", s.Addr())
}
