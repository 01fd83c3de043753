// @title           Login Gateway API
// @version         1.0
// @description     SMS code, password and desktop QR login.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"log"

	"logingate/internal/app"
	"logingate/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		log.Fatalf("run: %v", err)
	}
}
