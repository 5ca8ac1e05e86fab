package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Serve 启动HTTP服务，ctx 结束后在 ShutdownTimeout 内优雅关闭
func (a *App) Serve(ctx context.Context) error {
	cfg := a.config.Server
	srv := &http.Server{
		Addr:           cfg.Address(),
		Handler:        a.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP服务启动",
			zap.String("addr", srv.Addr),
			zap.String("version", a.appInfo.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP服务启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("正在关闭HTTP服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP服务强制关闭", zap.Error(err))
		return err
	}
	a.logger.Info("HTTP服务已停止")
	return nil
}
