package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/savourfood/savourpos/internal/config"
	"github.com/savourfood/savourpos/internal/controllers"
	"github.com/savourfood/savourpos/internal/dbkeeper"
	"github.com/savourfood/savourpos/internal/logger"
	"github.com/savourfood/savourpos/internal/middleware"
	"github.com/savourfood/savourpos/internal/storage"
	"golang.org/x/text/currency"
)

type Server struct {
	srv    *http.Server
	ctx    context.Context
	keeper *dbkeeper.DBKeeper

	Log *logger.Logger
}

// NewServer creates a new Server instance with the provided context
func NewServer(ctx context.Context) *Server {
	server := new(Server)
	server.ctx = ctx
	return server
}

// Serve wires the application together and runs the HTTP server until the
// context is cancelled.
func (server *Server) Serve() {
	// create and initialize a new option instance
	option := config.NewOptions()
	option.ParseFlags()

	// get a new logger
	nLogger, err := logger.NewLogger(option.LogLevel())
	if err != nil {
		log.Fatalln(err)
	}
	server.Log = nLogger

	unit, err := currency.ParseISO(option.CurrencyCode())
	if err != nil {
		log.Fatalf("invalid currency code %q: %v", option.CurrencyCode(), err)
	}

	keeper := dbkeeper.NewDBKeeper(server.ctx, option.DataBaseDSN, option.MigrationsDir(), nLogger)
	if keeper == nil {
		log.Fatalln("failed to initialize database keeper")
	}
	server.keeper = keeper

	nStorage := storage.NewStorage(keeper, unit, nLogger)
	basecontr := controllers.NewBaseController(nStorage, nLogger)

	// create router and mount routes
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(nLogger))
	r.Mount("/", basecontr.Route())

	// configure and start the server
	server.srv = startServer(r, option.RunAddr())
	nLogger.Info("server started on " + option.RunAddr())

	<-server.ctx.Done()
}

func startServer(router chi.Router, address string) *http.Server {
	srv := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	return srv
}

// Shutdown performs a graceful server shutdown within the given timeout.
func (server *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if server.srv != nil {
		if err := server.srv.Shutdown(ctx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}

	if server.keeper != nil {
		server.keeper.Close()
	}

	if server.Log != nil {
		server.Log.Sync()
	}
}
