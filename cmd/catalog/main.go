package main

import (
	"context"
	"time"

	"github.com/niksmo/pc-catalog/config"
	"github.com/niksmo/pc-catalog/internal/app"
	"github.com/niksmo/pc-catalog/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	catalogService := app.New(sigCtx, cfg)

	catalogService.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	catalogService.Close(ctx)
}
