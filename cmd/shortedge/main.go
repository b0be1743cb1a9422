package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shortedge/config"
	"github.com/shortedge/model"
	"github.com/shortedge/repository/operations"
	"github.com/shortedge/resizer"
	"github.com/shortedge/router"
	"github.com/shortedge/web/downloader"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	log.Info().Msg("starting shortedge...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	rsz, err := resizer.New(cfg.Resize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing resizer")
	}
	log.Info().
		Int("targetShortEdge", cfg.Resize.TargetShortEdge).
		Str("format", cfg.Resize.Format.String()).
		Str("engine", cfg.Resize.Engine).
		Msg("resizer ready")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var opRepo model.OperationsRepository = operations.Nop{}
	if cfg.Database.Enabled {
		db, err := createDBsession(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating db connection")
		}
		defer db.Close()

		repo := operations.NewRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("error migrating db")
		}
		opRepo = repo
		log.Info().Str("host", cfg.Database.Host).Msg("operation log enabled")
	}

	httpDownloader := downloader.NewHTTP(
		downloader.NewClient(cfg.Server.ReadTimeout, cfg.Download.AllowPrivate),
		cfg.Server.MaxBodyBytes,
		cfg.Download.AllowedHosts,
	)
	downloadSvc := downloader.NewDispatcher().
		Register("http", httpDownloader).
		Register("https", httpDownloader)
	if cfg.S3.Enabled {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.S3.Region)})
		if err != nil {
			log.Fatal().Err(err).Msg("error creating aws session")
		}
		downloadSvc.Register("s3", downloader.NewS3(s3manager.NewDownloader(sess), cfg.Server.MaxBodyBytes))
		log.Info().Str("region", cfg.S3.Region).Msg("s3 sources enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.New(log.Logger, rsz, opRepo, downloadSvc, cfg.Server.MaxBodyBytes),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error shutting down server")
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func createDBsession(cfg config.Database) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	return sql.Open("postgres", psqlInfo)
}
