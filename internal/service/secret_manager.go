package service

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretManagerService resolves application secrets from GCP Secret
// Manager, used when credentials are not supplied via the environment.
type SecretManagerService interface {
	GetSecret(ctx context.Context, name string) (string, error)
	Close() error
}

type secretManagerService struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretManagerService(ctx context.Context, projectID string) (SecretManagerService, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP project ID is not set")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &secretManagerService{client: client, projectID: projectID}, nil
}

// GetSecret returns the latest version of the named secret.
func (s *secretManagerService) GetSecret(ctx context.Context, name string) (string, error) {
	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, name)
	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return string(result.Payload.Data), nil
}

func (s *secretManagerService) Close() error {
	return s.client.Close()
}
