package snowflake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/auth"
	"github.com/redhat-community-ai-tools/jira-mcp-snowflake/pkg/config"
)

// ConnectorPool owns the single native-driver connection used when the
// connection method is "connector". The connection is opened lazily under a
// mutex and reopened after Close.
type ConnectorPool struct {
	cfg    *config.Config
	logger zerolog.Logger

	mu sync.Mutex
	db *sql.DB
}

// NewConnectorPool creates a connector pool. No connection is opened until
// the first DB call.
func NewConnectorPool(cfg *config.Config, logger zerolog.Logger) *ConnectorPool {
	return &ConnectorPool{
		cfg:    cfg,
		logger: logger.With().Str("component", "connector-pool").Logger(),
	}
}

// DB returns the shared database handle, opening it if none exists. The
// handle verifies liveness with a ping so a stale connection is replaced.
func (p *ConnectorPool) DB(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		if err := p.db.PingContext(ctx); err == nil {
			return p.db, nil
		}
		p.logger.Warn().Msg("existing connection failed ping, reconnecting")
		_ = p.db.Close()
		p.db = nil
	}

	driverCfg, err := buildDriverConfig(p.cfg)
	if err != nil {
		return nil, err
	}

	dsn, err := sf.DSN(driverCfg)
	if err != nil {
		return nil, fmt.Errorf("build dsn: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	p.db = db
	p.logger.Info().
		Str("account", p.cfg.Account).
		Str("authenticator", p.cfg.Authenticator).
		Msg("opened native connection")
	return p.db, nil
}

// Close closes and clears the connection; a later DB call reopens it.
func (p *ConnectorPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	p.logger.Debug().Msg("closed native connection")
	return err
}

// buildDriverConfig maps gateway configuration onto driver parameters,
// selecting one of the four supported authenticator shapes. Each missing
// required field fails with a descriptive error.
func buildDriverConfig(cfg *config.Config) (*sf.Config, error) {
	if cfg.Account == "" {
		return nil, errors.New("SNOWFLAKE_ACCOUNT is required")
	}

	driverCfg := &sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Warehouse: cfg.Warehouse,
		Role:      cfg.Role,
	}

	switch cfg.Authenticator {
	case config.AuthSnowflakeJWT:
		if cfg.PrivateKeyFile == "" {
			return nil, errors.New("SNOWFLAKE_PRIVATE_KEY_FILE is required for JWT authentication")
		}
		key, err := auth.LoadPrivateKey(cfg.PrivateKeyFile, cfg.PrivateKeyPwd)
		if err != nil {
			return nil, fmt.Errorf("load private key: %w", err)
		}
		driverCfg.Authenticator = sf.AuthTypeJwt
		driverCfg.PrivateKey = key

	case config.AuthOAuthClientCredentials:
		if cfg.OAuthClientID == "" || cfg.OAuthClientSec == "" {
			return nil, errors.New("SNOWFLAKE_OAUTH_CLIENT_ID and SNOWFLAKE_OAUTH_CLIENT_SECRET are required")
		}
		driverCfg.Authenticator = sf.AuthTypeOAuthClientCredentials
		driverCfg.OauthClientID = cfg.OAuthClientID
		driverCfg.OauthClientSecret = cfg.OAuthClientSec
		driverCfg.OauthTokenRequestURL = cfg.OAuthTokenURL

	case config.AuthOAuth:
		if cfg.Token == "" {
			return nil, errors.New("SNOWFLAKE_TOKEN is required for OAuth token authentication")
		}
		driverCfg.Authenticator = sf.AuthTypeOAuth
		driverCfg.Token = cfg.Token

	default:
		if cfg.User == "" || cfg.Password == "" {
			return nil, errors.New("SNOWFLAKE_USER and SNOWFLAKE_PASSWORD are required")
		}
		driverCfg.Authenticator = sf.AuthTypeSnowflake
		driverCfg.Password = cfg.Password
	}

	return driverCfg, nil
}
