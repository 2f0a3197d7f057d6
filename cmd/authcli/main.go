package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-token-auth/client"
	"github.com/jrsteele09/go-token-auth/internal/cli"
	"github.com/jrsteele09/go-token-auth/internal/config"
	"github.com/jrsteele09/go-token-auth/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	baseURL := flag.String("url", config.GetEnv("AUTH_URL", "http://localhost:5000/api/auth"), "auth API base URL")
	tokenFile := flag.String("token-file", defaultStatePath("token"), "where the access token is kept between runs")
	cookieFile := flag.String("cookie-file", defaultStatePath("cookies.json"), "where the refresh cookie is kept between runs")
	flag.Parse()

	logger := logging.SetupWriter(os.Stderr, config.GetEnv("LOG_LEVEL", "warn"), true)

	jar, err := client.NewFileCookieJar(*cookieFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load cookies")
	}

	session, err := client.New(*baseURL,
		client.WithTokenStore(client.NewFileTokenStore(*tokenFile)),
		client.WithCookieJar(jar),
		client.WithLogger(logger),
		client.WithOnSessionExpired(func() {
			fmt.Fprintln(os.Stderr, "Session expired")
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to create client")
	}

	ctx := context.Background()
	app := cli.NewApp(session, os.Stdin, os.Stdout)

	if flag.NArg() == 0 {
		if err := app.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("Input failed")
		}
		return
	}
	for _, cmd := range flag.Args() {
		if err := app.Execute(ctx, cmd); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", cmd, err)
			os.Exit(1)
		}
	}
}

// defaultStatePath places name in the user's config directory, falling back
// to the working directory.
func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tokenauth-" + name
	}
	return filepath.Join(dir, "tokenauth", name)
}
