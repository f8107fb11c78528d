package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-grid/api"
	"github.com/hoshinonyaruko/snake-grid/clock"
	"github.com/hoshinonyaruko/snake-grid/config"
	"github.com/hoshinonyaruko/snake-grid/game"
	"github.com/hoshinonyaruko/snake-grid/input"
	"github.com/hoshinonyaruko/snake-grid/memimg"
	"github.com/hoshinonyaruko/snake-grid/render"
	"github.com/hoshinonyaruko/snake-grid/snake"
	"github.com/hoshinonyaruko/snake-grid/tui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Initialize the configuration
	cfg, err := config.LoadConfig("./config.json")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open log")
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctrl := game.New(snake.New(cfg.GridSize, rng), clock.Ticker{}, cfg.TickInterval(), logger)

	switch cfg.Frontend {
	case "tui":
		err = runTUI(ctx, ctrl, logger)
	default:
		err = runWeb(ctx, cfg, ctrl, logger)
	}
	if err != nil {
		logger.Error().Err(err).Msg("exit")
		closeLog()
		os.Exit(1)
	}
}

// newLogger logs to stderr, or to the log file in tui mode so the board is
// not overwritten.
func newLogger(cfg *config.AppConfig) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("loglevel: %w", err)
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	closeFn := func() {}
	if cfg.Frontend == "tui" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		out = f
		closeFn = func() { f.Close() }
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closeFn, nil
}

func runTUI(ctx context.Context, ctrl *game.Controller, logger zerolog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	return tui.New(screen, ctrl, logger).Run(ctx)
}

func runWeb(ctx context.Context, cfg *config.AppConfig, ctrl *game.Controller, logger zerolog.Logger) error {
	if err := EnsureFoldersExist(logger, cfg.Foods); err != nil {
		return err
	}

	// 加载食物图标 并检测热更新到内存
	blockSize := config.GetConfigValue("blocksize").(int)
	icons := memimg.New(blockSize, logger)
	if err := icons.LoadDir(cfg.Foods); err != nil {
		return fmt.Errorf("load icons: %w", err)
	}
	stopWatch, err := icons.Watch(cfg.Foods)
	if err != nil {
		return fmt.Errorf("watch icons: %w", err)
	}
	defer stopWatch()

	board := &render.Board{BlockSize: blockSize, Icons: icons, FoodIcon: cfg.FoodIcon}
	keys := input.NewQueue()
	binding := ctrl.Start(keys)
	defer binding.Close()

	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(ctrl, keys, board, logger),
		// event streams end with ctx
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(logger zerolog.Logger, folders ...string) error {
	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			if err := os.MkdirAll(folder, 0755); err != nil {
				return fmt.Errorf("create %s directory: %w", folder, err)
			}
			logger.Info().Str("dir", folder).Msg("created directory")
		}
	}
	return nil
}
