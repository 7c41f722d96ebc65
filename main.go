package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/familos/backend/internal/budget"
	"github.com/familos/backend/internal/cache"
	"github.com/familos/backend/internal/clock"
	v1 "github.com/familos/backend/internal/controllers/v1"
	"github.com/familos/backend/internal/ledger"
	"github.com/familos/backend/internal/period"
	"github.com/familos/backend/internal/remote/sqlitestore"
	"github.com/familos/backend/internal/router"
	"github.com/familos/backend/internal/sync"
	"github.com/familos/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// The family every record belongs to. One backend serves one family.
	scope := types.Scope(os.Getenv("FAMILY_ID"))
	if err := scope.Validate(); err != nil {
		log.Fatal().Msg("the FAMILY_ID environment variable must be set")
	}

	creator := os.Getenv("FAMILY_OPERATOR")

	dsn, ok := os.LookupEnv("DB_DSN")
	if !ok {
		dataDir := filepath.Join(".", "data")
		if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
			log.Fatal().Msg(err.Error())
		}
		dsn = filepath.Join(dataDir, "familos.db")
	}

	store, err := sqlitestore.Open(dsn)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer store.Close()

	clk := clock.System{}
	c := cache.New()

	l, err := ledger.New(scope, c, store.Contributions(), clk)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	engine := ledger.NewEngine(l, store.Contributions())

	periods, err := period.NewManager(scope, creator, c, store.Periods(), clk)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	analyzer := budget.NewAnalyzer(c, clk)

	reconciler, err := sync.NewReconciler(scope, c, store)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	syncer, err := sync.NewSyncer(scope, c, store, log.Logger)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer.Start(ctx)
	defer syncer.Stop()

	r, err := router.New()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	controller := v1.NewController(c, l, engine, periods, analyzer, reconciler, syncer)
	router.AttachRoutes(&r.RouterGroup, controller, store)

	addr := ":8080"
	if port, ok := os.LookupEnv("PORT"); ok {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msg(err.Error())
		}
	}()
	log.Info().Str("addr", addr).Str("scope", string(scope)).Msg("backend startup complete")

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Msg(err.Error())
	}
}
