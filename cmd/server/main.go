package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/fakturo/invoice-mailer/internal/api"
	"github.com/fakturo/invoice-mailer/internal/config"
	"github.com/fakturo/invoice-mailer/internal/dispatch"
	"github.com/fakturo/invoice-mailer/internal/docstore"
	"github.com/fakturo/invoice-mailer/internal/invoice"
	"github.com/fakturo/invoice-mailer/internal/postmark"
	"github.com/fakturo/invoice-mailer/internal/sender"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.Sender.DefaultFromEmail == "" {
		log.Fatal("DEFAULT_FROM_EMAIL is required")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Connecting to database: %v", err)
	}

	documents, err := docstore.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Initializing document store: %v", err)
	}

	provider := postmark.NewClient(cfg.Postmark)

	identityStore := sender.NewStore(db)
	domainService := sender.NewService(identityStore, provider)
	invoiceStore := invoice.NewStore(db)

	dispatcher := dispatch.NewDispatcher(
		invoiceStore,
		identityStore,
		documents,
		provider,
		cfg.Sender.DefaultFromEmail,
		cfg.Sender.DefaultFromName,
	)

	server := api.NewServer(cfg.Server,
		api.NewDomainHandlers(domainService, identityStore),
		api.NewInvoiceHandlers(dispatcher, invoiceStore),
	)

	go func() {
		log.Printf("Server listening on %s", server.Addr())
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
