package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration

	BootstrapName     string
	BootstrapEmail    string
	BootstrapPassword string
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("TOURDESK_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("TOURDESK_JWT_ISSUER")
	if issuer == "" {
		issuer = "tourdesk"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("TOURDESK_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	name := os.Getenv("TOURDESK_ADMIN_NAME")
	if name == "" {
		name = "admin"
	}

	return AuthConfig{
		JWTSecret:         secret,
		JWTIssuer:         issuer,
		JWTDuration:       duration,
		BootstrapName:     name,
		BootstrapEmail:    os.Getenv("TOURDESK_ADMIN_EMAIL"),
		BootstrapPassword: os.Getenv("TOURDESK_ADMIN_PASSWORD"),
	}
}

// EngineConfig selects the table source backend and the engine's static
// inputs. TOURDESK_SOURCE: gateway (default), sqlite, workbook, bigquery.
type EngineConfig struct {
	SourceKind string
	GatewayURL string

	WorkbookPath string

	BigQueryProject string
	BigQueryDataset string

	TemplatePath      string
	AliasConfigPath   string
	AliasOverridesCSV string
	ReportingCurrency string
}

func LoadEngineConfig() EngineConfig {
	kind := os.Getenv("TOURDESK_SOURCE")
	if kind == "" {
		kind = "gateway"
	}

	gateway := os.Getenv("TOURDESK_GATEWAY_URL")
	if gateway == "" {
		gateway = "http://localhost:9090"
	}

	reporting := os.Getenv("TOURDESK_REPORTING_CURRENCY")
	if reporting == "" {
		reporting = "KRW"
	}

	return EngineConfig{
		SourceKind:        kind,
		GatewayURL:        gateway,
		WorkbookPath:      os.Getenv("TOURDESK_WORKBOOK"),
		BigQueryProject:   os.Getenv("TOURDESK_BQ_PROJECT"),
		BigQueryDataset:   os.Getenv("TOURDESK_BQ_DATASET"),
		TemplatePath:      os.Getenv("TOURDESK_TEMPLATE"),
		AliasConfigPath:   os.Getenv("TOURDESK_ALIAS_CONFIG"),
		AliasOverridesCSV: os.Getenv("TOURDESK_ALIAS_OVERRIDES"),
		ReportingCurrency: reporting,
	}
}
