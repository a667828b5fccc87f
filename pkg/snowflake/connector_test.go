package snowflake

import (
	"testing"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/config"
)

func TestBuildDriverConfig_AuthMatrix(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
		check   func(t *testing.T, got *sf.Config)
	}{
		{
			name:    "missing account",
			cfg:     config.Config{Authenticator: config.AuthSnowflake},
			wantErr: "SNOWFLAKE_ACCOUNT is required",
		},
		{
			name: "password auth",
			cfg: config.Config{
				Account:       "acct",
				User:          "alice",
				Password:      "secret",
				Database:      "DB",
				Schema:        "PUBLIC",
				Warehouse:     "WH",
				Role:          "ANALYST",
				Authenticator: config.AuthSnowflake,
			},
			check: func(t *testing.T, got *sf.Config) {
				if got.Authenticator != sf.AuthTypeSnowflake {
					t.Errorf("Authenticator = %v, want password auth", got.Authenticator)
				}
				if got.Password != "secret" || got.Role != "ANALYST" {
					t.Errorf("config fields not mapped: %+v", got)
				}
			},
		},
		{
			name: "password auth missing credentials",
			cfg: config.Config{
				Account:       "acct",
				Authenticator: config.AuthSnowflake,
			},
			wantErr: "SNOWFLAKE_USER and SNOWFLAKE_PASSWORD are required",
		},
		{
			name: "jwt auth missing key file",
			cfg: config.Config{
				Account:       "acct",
				User:          "alice",
				Authenticator: config.AuthSnowflakeJWT,
			},
			wantErr: "SNOWFLAKE_PRIVATE_KEY_FILE is required for JWT authentication",
		},
		{
			name: "oauth client credentials missing client",
			cfg: config.Config{
				Account:       "acct",
				Authenticator: config.AuthOAuthClientCredentials,
			},
			wantErr: "SNOWFLAKE_OAUTH_CLIENT_ID and SNOWFLAKE_OAUTH_CLIENT_SECRET are required",
		},
		{
			name: "oauth client credentials",
			cfg: config.Config{
				Account:        "acct",
				Authenticator:  config.AuthOAuthClientCredentials,
				OAuthClientID:  "client-id",
				OAuthClientSec: "client-secret",
				OAuthTokenURL:  "https://token.url",
			},
			check: func(t *testing.T, got *sf.Config) {
				if got.Authenticator != sf.AuthTypeOAuthClientCredentials {
					t.Errorf("Authenticator = %v, want client credentials", got.Authenticator)
				}
				if got.OauthTokenRequestURL != "https://token.url" {
					t.Errorf("OauthTokenRequestURL = %q", got.OauthTokenRequestURL)
				}
			},
		},
		{
			name: "oauth token missing token",
			cfg: config.Config{
				Account:       "acct",
				Authenticator: config.AuthOAuth,
			},
			wantErr: "SNOWFLAKE_TOKEN is required for OAuth token authentication",
		},
		{
			name: "oauth token",
			cfg: config.Config{
				Account:       "acct",
				Authenticator: config.AuthOAuth,
				Token:         "oauth-token",
			},
			check: func(t *testing.T, got *sf.Config) {
				if got.Authenticator != sf.AuthTypeOAuth || got.Token != "oauth-token" {
					t.Errorf("oauth token not mapped: %+v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDriverConfig(&tt.cfg)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildDriverConfig() error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}
