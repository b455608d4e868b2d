// Команда admintoken печатает токен администратора для маршрутов /api/admin.
//
// Секрет берется из ADMIN_JWT_SECRET (или .env), срок действия задается флагом -ttl.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/shortlink/internal/tokens"
)

func main() {
	ttl := flag.Duration("ttl", 24*time.Hour, "Срок действия токена") //nolint:mnd
	flag.Parse()

	if err := run(*ttl); err != nil {
		logrus.WithError(err).Fatal("generate admin token")
	}
}

func run(ttl time.Duration) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "load .env file")
	}

	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		return errors.New("ADMIN_JWT_SECRET is empty")
	}

	token, err := tokens.GenerateAdminJWT(ttl, []byte(secret))
	if err != nil {
		return err //nolint:wrapcheck
	}
	fmt.Println(token) //nolint:forbidigo
	return nil
}
