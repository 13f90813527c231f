package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/kbase/internal/adapters/driven/embedding/resilient"
	"github.com/custodia-labs/kbase/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    domain.EmbeddingSettings
		wantErr     error
		errContains string
	}{
		{
			name: "ollama provider creates service",
			settings: domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "deepseek-embed",
			},
		},
		{
			name: "openai without key is unavailable",
			settings: domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				Model:    "deepseek-embed",
			},
			wantErr:     domain.ErrEmbeddingUnavailable,
			errContains: "API key",
		},
		{
			name:        "unknown provider is unavailable",
			settings:    domain.EmbeddingSettings{Provider: "anthropic", APIKey: "k", Model: "m"},
			wantErr:     domain.ErrEmbeddingUnavailable,
			errContains: `"anthropic"`,
		},
		{
			name:     "empty settings are unavailable",
			settings: domain.EmbeddingSettings{},
			wantErr:  domain.ErrEmbeddingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err, tt.errContains)
				}
				if svc != nil {
					t.Error("expected nil service on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc == nil {
				t.Fatal("expected service, got nil")
			}
			if svc.ModelName() != tt.settings.Model {
				t.Errorf("ModelName() = %q, want %q", svc.ModelName(), tt.settings.Model)
			}
			_ = svc.Close()
		})
	}
}

func TestNewEmbeddingService_Retries(t *testing.T) {
	base := domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
	}

	t.Run("single attempt is not wrapped", func(t *testing.T) {
		svc, err := NewEmbeddingService(base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := svc.(*resilient.EmbeddingService); ok {
			t.Error("expected the plain client when MaxAttempts <= 1")
		}
	})

	t.Run("multiple attempts are wrapped", func(t *testing.T) {
		settings := base
		settings.MaxAttempts = 3
		svc, err := NewEmbeddingService(settings)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := svc.(*resilient.EmbeddingService); !ok {
			t.Errorf("expected *resilient.EmbeddingService, got %T", svc)
		}
	})

	t.Run("unconfigured returns error", func(t *testing.T) {
		svc, err := NewEmbeddingService(domain.EmbeddingSettings{})
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			t.Fatalf("error = %v, want ErrEmbeddingUnavailable", err)
		}
		if svc != nil {
			t.Error("expected nil service")
		}
	})
}

func TestValidateEmbeddingConfig(t *testing.T) {
	t.Run("reachable ollama", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/tags" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := ValidateEmbeddingConfig(context.Background(), domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
			Model:    "nomic-embed-text",
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("openai rejects key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		err := ValidateEmbeddingConfig(context.Background(), domain.EmbeddingSettings{
			Provider: domain.AIProviderOpenAI,
			BaseURL:  server.URL,
			APIKey:   "bad",
			Model:    "deepseek-embed",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "unreachable") {
			t.Errorf("error %q should mention unreachable", err)
		}
	})

	t.Run("unconfigured", func(t *testing.T) {
		err := ValidateEmbeddingConfig(context.Background(), domain.EmbeddingSettings{})
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			t.Errorf("error = %v, want ErrEmbeddingUnavailable", err)
		}
	})
}
