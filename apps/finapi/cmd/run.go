package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quatton/fina/pkg/completion"
	"github.com/quatton/fina/pkg/credstore"
	"github.com/quatton/fina/pkg/db"
	"github.com/quatton/fina/pkg/fapi"
	"github.com/quatton/fina/pkg/fapi/config"
	"github.com/quatton/fina/pkg/fapi/routes"
	"github.com/quatton/fina/pkg/fapi/services"
	"github.com/quatton/fina/pkg/fapi/services/iam"
	"github.com/quatton/fina/pkg/fapi/services/identity"
	"github.com/quatton/fina/pkg/fapi/services/parser"
	"github.com/quatton/fina/pkg/fapi/services/transactions"
	"github.com/quatton/fina/pkg/fauth"
	"github.com/quatton/fina/pkg/federation"
	"github.com/quatton/fina/pkg/flog"
	"github.com/quatton/fina/pkg/kv"
	"github.com/quatton/fina/pkg/notify"
	"github.com/quatton/fina/pkg/otp"
	"github.com/quatton/fina/pkg/password"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve the HTTP API",
	Long: `Serves the fina API on PORT. SQLite and in-memory databases are migrated
on start; postgres is expected to be migrated with the migrate command.`,
	Run: run,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.ValidateEnv()
	if err != nil {
		log.Fatalf("❌ %v\n", err)
	}

	logger := flog.FromLevel(cfg.LogLevel)
	cfg.Print(log.Printf)

	dbCfg := cfg.Database()
	database, err := db.New(ctx, dbCfg)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	if dbCfg.Driver == db.DriverSQLite {
		if err := db.Migrate(ctx, database, logger); err != nil {
			logger.Fatal("failed to migrate database", "error", err)
		}
	}

	var states kv.Store
	if cfg.ValkeyAddr != "" {
		valkey, err := kv.NewValkeyStore(ctx, kv.ValkeyConfig{
			Addr:     cfg.ValkeyAddr,
			Password: cfg.ValkeyPassword,
			DB:       cfg.ValkeyDB,
		})
		if err != nil {
			logger.Fatal("failed to connect to valkey", "error", err)
		}
		defer valkey.Close()
		states = valkey
	}

	svcs := buildServices(cfg, credstore.NewBunStore(database), transactions.NewService(database), states, logger)

	api := fapi.NewApi(cfg.CORSAllowedOrigins...)
	api.Api.UseMiddleware(svcs.IAM.Middleware())
	routes.RegisterAPI(api.Api, svcs)

	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	log.Printf("🚀 API starting on %s\n", addr)
	log.Printf("📚 OpenAPI docs: %s/docs\n", cfg.BaseURL)
	log.Printf("📄 OpenAPI spec: %s/openapi.json\n", cfg.BaseURL)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.EnvConfig, store credstore.Store, txSvc *transactions.Service, states kv.Store, logger *flog.Logger) *services.Services {
	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.UpstreamTimeout,
		})
	}

	if cfg.IDTokenMode == federation.ModeUntrusted {
		logger.Warn("Google ID tokens are decoded without signature verification", "mode", cfg.IDTokenMode)
	}

	upstream := &http.Client{Timeout: cfg.UpstreamTimeout}
	providers := federation.NewRegistry(
		federation.NewGoogle(federation.ClientConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
		}, federation.NewVerifier(cfg.IDTokenMode, cfg.GoogleClientID, upstream), federation.WithGoogleHTTPClient(upstream)),
		federation.NewFacebook(federation.ClientConfig{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			RedirectURL:  cfg.FacebookRedirectURI,
		}, federation.WithFacebookHTTPClient(upstream)),
	)

	tokens := fauth.NewIssuer(cfg.AuthSecret, cfg.TokenTTL())

	resolver := identity.NewResolver(identity.Deps{
		Store:     store,
		Hasher:    password.NewHasher(cfg.BcryptCost),
		OTP:       otp.NewManager(store, notifier, otp.WithLogger(logger)),
		Tokens:    tokens,
		Providers: providers,
		States:    states,
		Logger:    logger,
	})

	completer := completion.NewOpenAI(completion.Config{
		BaseURL:    cfg.AIBaseURL,
		APIKey:     cfg.AIAPIKey,
		Model:      cfg.AIModel,
		Timeout:    cfg.UpstreamTimeout,
		HTTPClient: upstream,
	})

	return services.NewServices(resolver, iam.NewIAMService(tokens, logger), txSvc, parser.NewService(completer), logger)
}
