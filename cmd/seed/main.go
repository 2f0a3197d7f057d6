package main

import (
	"context"
	"flag"
	"time"

	"github.com/jrsteele09/go-token-auth/internal/config"
	"github.com/jrsteele09/go-token-auth/internal/database"
	"github.com/jrsteele09/go-token-auth/internal/logging"
	"github.com/jrsteele09/go-token-auth/users"
	pguserrepo "github.com/jrsteele09/go-token-auth/users/pgrepo"
	fakeuserrepo "github.com/jrsteele09/go-token-auth/users/repofake"
	"github.com/jrsteele09/go-token-auth/users/seed"
	"github.com/rs/zerolog/log"
)

func main() {
	destroy := flag.Bool("d", false, "delete every user instead of importing the sample users")
	flag.Parse()

	c := config.New()
	logging.Setup(c.GetLogLevel(), !c.IsProduction())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var repo users.UserRepo
	if c.GetUserStore() == config.UserStorePostgres {
		db, err := database.OpenPostgres(ctx, c.GetDatabaseURL())
		if err != nil {
			log.Fatal().Err(err).Msg("Unable to open database")
		}
		defer db.Close()
		repo = pguserrepo.NewPostgresRepository(db)
	} else {
		log.Warn().Msg("USER_STORE is not postgres, seeding an in-memory store that is discarded on exit")
		repo = fakeuserrepo.NewFakeUserRepo()
	}

	if *destroy {
		if err := seed.Destroy(ctx, repo); err != nil {
			log.Fatal().Err(err).Msg("Destroy failed")
		}
		log.Info().Msg("Users destroyed")
		return
	}

	created, err := seed.Import(ctx, repo)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}
	for _, u := range created {
		log.Info().Str("id", u.ID).Str("email", u.Email).Msg("Imported user")
	}
}
