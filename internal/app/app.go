// Package app wires the loaders, renderer and export pipeline from a
// resolved Config.
package app

import (
	"context"
	"time"

	"photobook-render/internal/config"
	"photobook-render/internal/export"
	"photobook-render/internal/exportconfig"
	"photobook-render/internal/imageload"
	"photobook-render/internal/logger"
	"photobook-render/internal/render"
)

// App is the assembled export stack.
type App struct {
	Configs  exportconfig.Provider
	Images   *imageload.Cache
	Fonts    *render.Fonts
	Pipeline *export.Pipeline

	store *imageload.RedisStore
}

// New assembles the stack. A configured Redis that cannot be reached is
// logged and skipped.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) *App {
	log = logger.OrNop(log)
	a := &App{}

	fetcher := imageload.NewFetcher(log)
	fetcher.ProxyURL = cfg.ProxyURL
	fetcher.ProxyHost = cfg.ProxyHost
	fetcher.AppOrigin = cfg.AppOrigin
	fetcher.BaseDir = cfg.BaseDir
	token := staticToken(cfg.Token)
	fetcher.Token = token

	if cfg.RedisAddr != "" {
		store := imageload.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 0)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := store.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("image store unavailable", "addr", cfg.RedisAddr, "error", err)
			_ = store.Close()
		} else {
			fetcher.Store = store
			a.store = store
		}
	}
	a.Images = imageload.NewCache(fetcher)

	a.Fonts = render.NewFonts(cfg.FontDir)
	a.Pipeline = export.NewPipeline(render.NewCompositor(a.Images, a.Fonts, log), log)

	if cfg.ConfigEndpoint != "" {
		c := exportconfig.NewClient(cfg.ConfigEndpoint, log)
		c.Token = token
		a.Configs = c
	} else {
		a.Configs = exportconfig.Defaults()
	}
	return a
}

// Close releases the image store connection.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func staticToken(tok string) func(context.Context) (string, error) {
	if tok == "" {
		return nil
	}
	return func(context.Context) (string, error) { return tok, nil }
}
