package main

import (
	"context"
	"errors"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/shortlink/internal/app"
	"github.com/fsdevblog/shortlink/internal/bmeta"
	"github.com/fsdevblog/shortlink/internal/config"
)

// Заполняются при сборке: go build -ldflags "-X main.buildVersion=v1.0.0 ...".
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	appConf := config.MustLoadConfig(os.Args[1:])

	a := app.Must(app.New(*appConf))

	a.Logger.WithFields(bmeta.Meta{
		Version: buildVersion,
		Date:    buildDate,
		Commit:  buildCommit,
	}.Fields()).Info("Build info")

	a.Logger.WithFields(logrus.Fields{
		"address":  appConf.ServerAddress,
		"base_url": appConf.BaseURL,
		"storage":  appConf.DBType,
		"admin":    appConf.AdminJWTSecret != "",
	}).Info("Starting server")
	if err := a.Run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.WithError(err).Fatal("server stopped with error")
	}
}
