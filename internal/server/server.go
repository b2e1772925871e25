package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/config"
	mongodoc "github.com/sngm3741/store-rating-services/api/internal/infrastructure/mongo"
	adminhttp "github.com/sngm3741/store-rating-services/api/internal/interfaces/http/admin"
	authhttp "github.com/sngm3741/store-rating-services/api/internal/interfaces/http/authapi"
	commonhttp "github.com/sngm3741/store-rating-services/api/internal/interfaces/http/common"
	ownerhttp "github.com/sngm3741/store-rating-services/api/internal/interfaces/http/owner"
	userhttp "github.com/sngm3741/store-rating-services/api/internal/interfaces/http/user"
	"github.com/sngm3741/store-rating-services/api/internal/rating/application"
)

// Server は HTTP サーバーのライフサイクルを管理し、各ハンドラへ依存注入するコンポジションルート。
// アプリケーションサービスをルータへ接続する責務のみを担い、ドメインロジックは持たない。
type Server struct {
	logger            *log.Logger
	client            *mongo.Client
	database          *mongo.Database
	tokens            *auth.TokenService
	accountService    application.AccountService
	ratingService     application.RatingService
	storeQueryService application.StoreQueryService
	ownerService      application.OwnerService
	adminService      application.AdminService
	userCollection    string
	storeCollection   string
	ratingCollection  string
	addr              string
	allowedOrigins    []string
}

// Run はHTTPサーバーを起動し、ルーティングとミドルウェアを組み立てる。
func (s *Server) Run() error {
	if err := s.ensureIndexes(context.Background()); err != nil {
		s.logger.Printf("インデックスの作成に失敗しました: %v", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	authHandler := authhttp.NewHandler(authhttp.Config{
		Logger:   s.logger,
		Accounts: s.accountService,
		Tokens:   s.tokens,
	})
	router.Route("/auth", func(r chi.Router) {
		authHandler.Register(r, s.authMiddleware)
	})

	userHandler := userhttp.NewHandler(userhttp.Config{
		Logger:       s.logger,
		StoreQueries: s.storeQueryService,
		Ratings:      s.ratingService,
	})
	router.Route("/user", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(commonhttp.RequireRoles(s.logger, auth.RoleUser))
		userHandler.Register(r)
	})

	ownerHandler := ownerhttp.NewHandler(ownerhttp.Config{
		Logger: s.logger,
		Owners: s.ownerService,
	})
	router.Route("/owner", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(commonhttp.RequireRoles(s.logger, auth.RoleOwner))
		ownerHandler.Register(r)
	})

	adminHandler := adminhttp.NewHandler(adminhttp.Config{
		Logger:   s.logger,
		Accounts: s.accountService,
		Admins:   s.adminService,
	})
	router.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(commonhttp.RequireRoles(s.logger, auth.RoleAdmin))
		adminHandler.Register(r)
	})

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB への疎通確認を行い、監視系からのヘルスチェック要求に応える。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、認証済みアイデンティティをコンテキストへ詰める。
// 全ルートグループで利用するため Server に集約している。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authorization ヘッダーがありません"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Bearer トークンを指定してください"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "アクセストークンが空です"})
			return
		}

		identity, err := s.tokens.Verify(tokenString)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "アクセストークンが無効です"})
			return
		}

		ctx := commonhttp.ContextWithIdentity(r.Context(), *identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ensureIndexes は一意制約(ユーザー・店舗のメール、評価の (userId, storeId) ペア)を起動時に保証する。
func (s *Server) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return mongodoc.EnsureIndexes(ctx, s.database, s.userCollection, s.storeCollection, s.ratingCollection)
}

// writeJSON は JSON レスポンスの共通書き込み処理。
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断し、プロセス終了時のリソースリークを防ぐ。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("サーバーが異常終了: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
}

// New は Config と Mongo クライアントを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
// 依存解決の起点となるファクトリとして機能する。
func New(cfg config.Config, client *mongo.Client) *Server {
	srv := &Server{
		logger:           cfg.ServerLog,
		client:           client,
		database:         client.Database(cfg.MongoDatabase),
		tokens:           auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		userCollection:   cfg.UserCollection,
		storeCollection:  cfg.StoreCollection,
		ratingCollection: cfg.RatingCollection,
		addr:             cfg.Addr,
		allowedOrigins:   append([]string(nil), cfg.AllowedOrigins...),
	}

	userRepo := mongodoc.NewUserRepository(srv.database, cfg.UserCollection)
	storeRepo := mongodoc.NewStoreRepository(srv.database, cfg.StoreCollection)
	ratingRepo := mongodoc.NewRatingRepository(srv.database, cfg.RatingCollection, cfg.UserCollection)

	srv.accountService = application.NewAccountService(userRepo)
	srv.ratingService = application.NewRatingService(ratingRepo, storeRepo)
	srv.storeQueryService = application.NewStoreQueryService(storeRepo, ratingRepo)
	srv.ownerService = application.NewOwnerService(storeRepo, ratingRepo)
	srv.adminService = application.NewAdminService(userRepo, storeRepo, ratingRepo)

	return srv
}
