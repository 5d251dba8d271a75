package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stockerhq/stocker/config"
	"github.com/stockerhq/stocker/internal/adminapi"
	"github.com/stockerhq/stocker/internal/alert"
	"github.com/stockerhq/stocker/internal/app"
	"github.com/stockerhq/stocker/internal/webserver"
	"go.uber.org/zap"
)

var (
	conffile = flag.String("c", "/etc/stocker.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer  = flag.Bool("v", false, "show version")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("stocker", version)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	mailer := alert.NewSmtpMailer(cfg.Smtp)
	evaluator := alert.NewEvaluator(mailer, cfg.Smtp.ManagerEmail)

	webserver.Init(application)
	adminapi.InitRouter(evaluator)

	if err := webserver.Listen(); err != nil {
		zap.S().Fatal(err)
	}
}
