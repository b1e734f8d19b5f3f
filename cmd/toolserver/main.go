package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itshmoh/exambot/internal/adapters/mcptool"
	"github.com/itshmoh/exambot/internal/bootstrap"
	"github.com/itshmoh/exambot/internal/config"
	"github.com/itshmoh/exambot/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logging.Setup("toolserver", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	srv := mcptool.NewServer(app.Retriever, version)

	if cfg.MCPTransport == "stdio" {
		if err := srv.ServeStdio(); err != nil {
			log.Fatalf("mcp stdio server error: %v", err)
		}
		return
	}

	go func() {
		log.Printf("mcp tool server listening on :%s", cfg.MCPPort)
		if err := srv.ServeHTTP(":" + cfg.MCPPort); err != nil {
			log.Fatalf("mcp http server error: %v", err)
		}
	}()

	<-ctx.Done()
}
