// Command admintoken prints a bearer token for the parameter admin endpoints.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/talx-hub/gopher-cashback/internal/config"
	"github.com/talx-hub/gopher-cashback/internal/utils/auth"
)

func main() {
	subject := flag.String("subject", "admin", "Token subject")
	ttl := flag.Duration("ttl", auth.TokenExpire, "Token lifetime")

	cfg := config.NewBuilder(slog.Default()).
		FromDotEnv(".env").
		FromEnv().
		FromFlags().
		GetConfig()
	if cfg.SecretKey == "" {
		log.Fatal("secret key is empty, set SECRET_KEY or -k")
	}

	token, err := auth.BuildToken(*subject, auth.RoleAdmin, []byte(cfg.SecretKey), *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
