package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/acl"
	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/pubsub"
	"app/internal/repository"
	"app/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *sql.DB, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initializing")

	// 1. Open DB connection (connection pooling)
	dsn := cfg.DBConnectionString
	// In a development environment, we want to ensure that SSL is disabled for
	// local testing. In production, the connection string should be provided
	// with the correct SSL settings.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := " "
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			if strings.Contains(dsn, "?") {
				separator = "&"
			} else {
				separator = "?"
			}
		}
		dsn += separator + "sslmode=disable"
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open db connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}
	logger.Info().Msg("Database connection successful")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// 2. Resolve the Stripe key, preferring Secret Manager when configured.
	if cfg.StripeSecretName != "" {
		secrets, err := service.NewSecretManagerService(context.Background(), cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("create secret manager client: %w", err)
		}
		key, err := secrets.GetSecret(context.Background(), cfg.StripeSecretName)
		secrets.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve stripe secret: %w", err)
		}
		cfg.StripeSecretKey = key
	}
	if cfg.StripeSecretKey == "" {
		return nil, nil, fmt.Errorf("stripe secret key is not configured")
	}

	// 3. Initialize object storage when a bucket is configured.
	var objectStorage service.ObjectStorage
	if cfg.S3Bucket != "" {
		s3Config, err := awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
			awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("load s3 config: %w", err)
		}
		s3Client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
			if cfg.S3URL != "" {
				o.BaseEndpoint = aws.String(cfg.S3URL)
				o.UsePathStyle = true
			}
		})
		objectStorage = service.NewS3Storage(s3Client, cfg.S3Bucket, cfg.PrivateObjectDir, logger)
	} else {
		logger.Warn().Msg("Object storage not configured, object routes will report errors")
	}

	// 4. Initialize Pub/Sub publisher when a project is configured.
	var publisher pubsub.Publisher
	if cfg.GCPProjectID != "" {
		p, err := pubsub.NewPublisher(context.Background(), cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("create pub/sub publisher: %w", err)
		}
		publisher = p
	}

	// 5. Initialize validator and access policy
	validate := validator.New(validator.WithRequiredStructEnabled())
	policy := acl.NewPolicy(cfg.PublicPrefixes())

	// 6. Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	postcardRepo := repository.NewPostcardRepo(db, logger)
	orderRepo := repository.NewOrderRepo(db)

	// Expired sessions are also dropped lazily on read; this keeps the
	// table from growing unbounded.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := sessionRepo.DeleteExpiredSessions(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to prune expired sessions")
			} else if n > 0 {
				logger.Debug().Int64("deleted", n).Msg("Pruned expired sessions")
			}
		}
	}()

	userSvc := service.NewUserService(userRepo)
	sessionSvc := service.NewSessionService(sessionRepo, cfg.SessionSecret, cfg.Environment != "development", logger)
	identitySvc := service.NewGoogleIdentityService(cfg, logger)
	stripeSvc := service.NewStripeService(cfg, userRepo, logger)
	subscriptionSvc := service.NewSubscriptionService(userRepo, stripeSvc, logger)
	postcardSvc := service.NewPostcardService(postcardRepo, objectStorage, logger)
	orderSvc := service.NewOrderService(orderRepo, postcardRepo, stripeSvc, publisher, cfg.OrderEventsTopic, logger)

	authHandler := handler.NewAuthHandler(identitySvc, sessionSvc, userSvc, cfg.AppBaseURL, logger)
	billingHandler := handler.NewBillingHandler(userSvc, stripeSvc, subscriptionSvc, logger)
	postcardHandler := handler.NewPostcardHandler(postcardSvc, userSvc, policy, validate, logger)
	orderHandler := handler.NewOrderHandler(orderSvc, userSvc, policy, validate, logger)
	objectHandler := handler.NewObjectHandler(objectStorage, userSvc, policy, validate, logger)

	// 7. Initialize middleware
	authMiddleware := middleware.SessionAuth(sessionSvc)
	optionalSession := middleware.OptionalSession(sessionSvc)

	// 8. Create ServeMux router
	mux := http.NewServeMux()

	// Create a subrouter for the API with the /api prefix
	apiMux := http.NewServeMux()
	authHandler.RegisterRoutes(apiMux, authMiddleware)
	billingHandler.RegisterRoutes(apiMux, authMiddleware)
	postcardHandler.RegisterRoutes(apiMux, authMiddleware)
	orderHandler.RegisterRoutes(apiMux, authMiddleware)
	objectHandler.RegisterRoutes(apiMux, authMiddleware)
	apiMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	// Object reads live at the root so stored normalized paths resolve
	// directly as URLs.
	objectHandler.RegisterObjectRoutes(mux, optionalSession)

	// 9. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	var root http.Handler = c.Handler(mux)
	root = middleware.LoggerMiddleware(logger, root)
	root = middleware.RecoverMiddleware(logger, root)
	return root, db, nil
}

// removeDisableGzip is a workaround for S3 signature errors with some S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
