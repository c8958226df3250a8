package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/birnsj/Project9-V1-sub002/internal/app"
)

func main() {
	configPath := flag.String("config", "", "scenario YAML (overridden by NAVSIM_CONFIG)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Config{ConfigPath: *configPath}); err != nil {
		log.Fatalf("%v", err)
	}
}
