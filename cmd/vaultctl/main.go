package main

import (
	"context"
	"log"
	"os"

	"github.com/vantavault/vantavault/internal/buildinfo"
	"github.com/vantavault/vantavault/internal/cli"
	"github.com/vantavault/vantavault/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	defer app.Close()
	app.Run(ctx)

}
