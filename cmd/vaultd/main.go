package main

import (
	"context"
	"log"
	"os"

	"github.com/vantavault/vantavault/internal/app"
	"github.com/vantavault/vantavault/internal/buildinfo"
	"github.com/vantavault/vantavault/internal/config"
	"github.com/vantavault/vantavault/internal/webauthn"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg, webauthn.Disabled{})

	if err != nil {
		log.Printf("%v", err)
		return
	}

	a.Run(ctx)

}
