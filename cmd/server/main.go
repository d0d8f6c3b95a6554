package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/inamate/canvas/internal/asset"
	"github.com/inamate/canvas/internal/auth"
	"github.com/inamate/canvas/internal/collab"
	"github.com/inamate/canvas/internal/config"
	"github.com/inamate/canvas/internal/db"
	"github.com/inamate/canvas/internal/document"
	mw "github.com/inamate/canvas/internal/middleware"
	"github.com/inamate/canvas/internal/room"
)

// Playground room allows anonymous access and is never persisted
const playgroundRoomID = "room_playground"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	queries := db.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	roomService := room.NewService(queries)
	roomHandler := room.NewHandler(roomService)

	boards := db.NewBoards(queries, cfg.SnapshotKeep)

	// Board loader for the collaboration hub
	boardLoader := func(roomID string) (*document.Board, error) {
		if roomID == playgroundRoomID {
			return document.NewSampleBoard(roomID), nil
		}
		return boards.Load(roomID)
	}

	// Board saver for the collaboration hub
	boardSaver := func(roomID string, board *document.Board) error {
		if roomID == playgroundRoomID {
			return nil
		}
		return boards.Save(roomID, board)
	}

	hub := collab.NewHub(boardLoader, boardSaver)
	hub.SetSaveInterval(cfg.SaveInterval)

	assetHandler := asset.NewHandler(cfg.AssetDir)
	origins := mw.ParseOrigins(cfg.AllowedOrigins)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(origins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, `{"status":"degraded"}`, http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Asset endpoints are public; the playground uses them too.
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/rooms", roomHandler.List).Methods("GET")
	api.HandleFunc("/rooms", roomHandler.Create).Methods("POST")
	api.HandleFunc("/rooms/{roomId}", roomHandler.Get).Methods("GET")
	api.HandleFunc("/rooms/{roomId}", roomHandler.Delete).Methods("DELETE")
	api.HandleFunc("/rooms/{roomId}/invite", roomHandler.Invite).Methods("POST")
	api.HandleFunc("/rooms/{roomId}/members", roomHandler.ListMembers).Methods("GET")
	api.HandleFunc("/rooms/{roomId}/members/{userId}", roomHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/rooms/{roomId}/board", roomHandler.GetLatestBoard).Methods("GET")

	// WebSocket endpoint
	wsOrigins := mw.OriginHosts(origins)
	r.HandleFunc("/ws/room/{roomId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, roomService, wsOrigins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run()
		return nil
	})

	g.Go(func() error {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		// Stop hub first to save all dirty boards
		slog.Info("saving all boards...")
		hub.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, rooms *room.Service, origins []string) {
	roomID := mux.Vars(r)["roomId"]

	var userID string
	var displayName string

	if roomID == playgroundRoomID {
		// Anonymous user for playground
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		var err error
		userID, err = authSvc.Authenticate(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		if err := rooms.CheckMembership(r.Context(), roomID, userID); err != nil {
			switch {
			case errors.Is(err, room.ErrNotFound):
				http.Error(w, "room not found", http.StatusNotFound)
			case errors.Is(err, room.ErrNotMember):
				http.Error(w, "not a room member", http.StatusForbidden)
			default:
				slog.Error("check membership", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		// Get user display name
		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	collab.NewClient(hub, conn, userID, displayName, roomID, clientID).Serve(r.Context())
}
