package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	AppBaseURL  string `envconfig:"APP_BASE_URL" default:"http://localhost:8080"`

	DBConnectionString string `envconfig:"DATABASE_URL" required:"true"`

	// SessionSecret signs the session cookie and the OAuth state token.
	SessionSecret string `envconfig:"SESSION_SECRET" required:"true"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:5173"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID" required:"true"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" required:"true"`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" required:"true"`

	// Required unless STRIPE_SECRET_NAME resolves it from Secret Manager.
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`

	// Object storage is optional; without a bucket the object routes
	// report storage as unconfigured.
	S3URL            string `envconfig:"S3_URL"`
	S3Bucket         string `envconfig:"S3_BUCKET"`
	S3Region         string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY"`
	PrivateObjectDir string `envconfig:"PRIVATE_OBJECT_DIR" default:"private"`

	// Comma-separated normalized-path prefixes readable without auth.
	PublicObjectPaths string `envconfig:"PUBLIC_OBJECT_PATHS" default:"/objects/public"`

	// Optional: publish order events to Pub/Sub when a project is set.
	GCPProjectID     string `envconfig:"GCP_PROJECT_ID"`
	OrderEventsTopic string `envconfig:"ORDER_EVENTS_TOPIC" default:"postcard-order-events"`

	// Optional: resolve the Stripe key from Secret Manager instead of the
	// environment (requires GCP_PROJECT_ID).
	StripeSecretName string `envconfig:"STRIPE_SECRET_NAME"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PublicPrefixes splits the configured allowlist into individual prefixes.
func (c *Config) PublicPrefixes() []string {
	return strings.Split(c.PublicObjectPaths, ",")
}
