package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/krishshaw418/Banking-MCP-Server/internal/config"
	"github.com/krishshaw418/Banking-MCP-Server/internal/events/kafka"
	interfaces "github.com/krishshaw418/Banking-MCP-Server/internal/interfaces"
	"github.com/krishshaw418/Banking-MCP-Server/internal/ledger"
	"github.com/krishshaw418/Banking-MCP-Server/internal/models"
	"github.com/krishshaw418/Banking-MCP-Server/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}
	log.Println("Connected to Postgres")

	var store interfaces.Store = postgres.NewPostgresStore(db)

	opts := []ledger.Option{ledger.WithLockWait(cfg.LockWait)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers)
		defer publisher.Close()
		opts = append(opts, ledger.WithPublisher(publisher))
		log.Printf("Publishing entry events to %v", cfg.KafkaBrokers)
	}
	engine := ledger.NewEngine(store, opts...)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /accounts/create", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HolderName     string          `json:"account_holder_name"`
			InitialBalance decimal.Decimal `json:"initial_balance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		account, err := engine.CreateAccount(r.Context(), req.HolderName, req.InitialBalance)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, account)
	})

	mux.HandleFunc("POST /accounts/deposit", func(w http.ResponseWriter, r *http.Request) {
		handleMutation(w, r, "Deposit successful", "amount_deposited", engine.Deposit)
	})

	mux.HandleFunc("POST /accounts/withdraw", func(w http.ResponseWriter, r *http.Request) {
		handleMutation(w, r, "Withdrawal successful", "amount_withdrawn", engine.Withdraw)
	})

	mux.HandleFunc("GET /accounts/{id}/balance", func(w http.ResponseWriter, r *http.Request) {
		account, err := engine.GetBalance(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	})

	mux.HandleFunc("GET /accounts/{id}/transactions", func(w http.ResponseWriter, r *http.Request) {
		limit := ledger.DefaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "limit must be an integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		entries, err := engine.ListTransactions(r.Context(), r.PathValue("id"), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if entries == nil {
			entries = []models.TransactionEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	srv := &http.Server{Addr: cfg.ListenAddr(), Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.ListenAddr())
		serveErr <- srv.ListenAndServe()
	}()

	// Shut down on SIGINT/SIGTERM so the deferred db and publisher
	// closes run.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		log.Printf("server error: %v", err)
	case <-quit:
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		log.Println("Server exited")
	}
}

// handleMutation decodes the shared deposit/withdraw request shape,
// runs the engine operation and renders the new balance.
func handleMutation(w http.ResponseWriter, r *http.Request, message, amountField string,
	op func(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)) {

	var req struct {
		AccountID string          `json:"account_id"`
		Amount    decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	newBalance, err := op(r.Context(), req.AccountID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     message,
		"account_id":  req.AccountID,
		amountField:   req.Amount,
		"new_balance": newBalance,
	})
}

// writeError maps the engine's error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrLockTimeout):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
