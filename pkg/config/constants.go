package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry explicit names.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SERVIQO_DB_DSN"
	EnvDBHost = "SERVIQO_DB_HOST"
	EnvDBUser = "SERVIQO_DB_USER"
	EnvDBName = "SERVIQO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
