// Command seed loads a JSON array of books into the catalog on behalf of a
// seeding account.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/auth"
	"github.com/Clark-Hu/book-reviews/internal/config"
	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/logging"
	"github.com/Clark-Hu/book-reviews/internal/repository"
	"github.com/Clark-Hu/book-reviews/internal/service"
	"github.com/Clark-Hu/book-reviews/internal/store"
	"github.com/Clark-Hu/book-reviews/internal/validate"
)

func main() {
	var (
		data     = flag.String("data", "books.json", "path to a JSON array of books")
		email    = flag.String("email", "seed@example.com", "seeding account email")
		password = flag.String("password", "", "seeding account password")
		name     = flag.String("name", "Catalog Seeder", "seeding account display name")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Options{Service: "book-reviews-seed"})
		bootLogger.Fatal().Err(err).Msg("config error")
	}
	logger := logging.New(logging.Options{
		Service: "book-reviews-seed",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	if *password == "" {
		logger.Fatal().Msg("-password is required")
	}

	entries, err := readBooks(*data)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *data).Msg("read seed data")
	}

	st, err := store.New(ctx, cfg.DBURL, store.Options{
		MaxConns:               2,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		AcquireTimeout:         time.Duration(cfg.DBAcquireSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	repo := repository.New(st)
	authSvc, err := auth.NewService(repo.Users, auth.Options{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.JWTExpiry,
		BcryptCost: cfg.BcryptCost,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init auth service")
	}

	seeder, err := signIn(ctx, authSvc, *email, *password, *name)
	if err != nil {
		logger.Fatal().Err(err).Str("email", *email).Msg("sign in seeding account")
	}

	catalog := service.NewCatalog(repo.Books, repo.Reviews, logger)
	added, rejected := seed(ctx, catalog, seeder.ID, entries, logger)

	logger.Info().
		Int("total", len(entries)).
		Int("added", added).
		Int("rejected", rejected).
		Msg("seed complete")
}

// signIn logs the seeding account in, creating it on first use.
func signIn(ctx context.Context, svc *auth.Service, email, password, name string) (domain.User, error) {
	user, _, err := svc.Authenticate(ctx, email, password)
	if err == nil {
		return user, nil
	}
	if apperror.KindOf(err) != apperror.KindUnauthorized {
		return domain.User{}, err
	}
	req := validate.SignupRequest{Email: email, Password: password, Name: name}
	if errs := req.Validate(); len(errs) > 0 {
		return domain.User{}, errs.Err()
	}
	user, _, err = svc.Register(ctx, req.Email, req.Password, req.Name)
	return user, err
}
