package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  driver: memory
workers:
  apply-course:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "lifecycle-manager", cfg.App.Name)
	assert.Equal(t, 2, cfg.Lifecycle.MaxApplicationsPerInstitution)
	assert.Equal(t, 3, cfg.Lifecycle.TransitionRetries)
	assert.Equal(t, 4, cfg.Matching.Concurrency)
	assert.Equal(t, "jobs", cfg.Matching.IndexName)
	assert.Equal(t, ":8080", cfg.Observability.MetricsAddress)

	w := cfg.Workers["apply-course"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "s3cret")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: db
    database: admissions
    user: app
    password: ${TEST_PG_PASSWORD}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://app:s3cret@db:5432/admissions?sslmode=disable", cfg.Database.Postgres.GetURL())
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "database:\n  driver: memory\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "postgres without host",
			body:    "camunda:\n  broker_address: zeebe:26500\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "unknown driver",
			body:    "camunda:\n  broker_address: zeebe:26500\ndatabase:\n  driver: firestore\n",
			wantErr: "not supported",
		},
		{
			name:    "index without elasticsearch",
			body:    "camunda:\n  broker_address: zeebe:26500\ndatabase:\n  driver: memory\nmatching:\n  use_index: true\n",
			wantErr: "matching.use_index",
		},
		{
			name:    "sns without topic",
			body:    "camunda:\n  broker_address: zeebe:26500\ndatabase:\n  driver: memory\nevents:\n  sns:\n    enabled: true\n",
			wantErr: "events.sns.topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_FallsBack(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"publish-admissions": {Enabled: false},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "publish-admissions"))
	assert.True(t, IsWorkerEnabled(cfg, "apply-job"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "apply-job").MaxJobsActive)
	assert.Equal(t, 2*time.Second, GetDuration(2000))
}

func TestLoadFromFile_UnsetPlaceholderIsEmpty(t *testing.T) {
	t.Setenv("APPROVAL_WEBHOOK_URL", "")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  driver: memory
approval:
  webhook_url: ${TEST_UNSET_WEBHOOK}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Approval.WebhookURL)
	assert.Equal(t, 10*time.Second, GetDuration(cfg.Approval.Timeout))
}
