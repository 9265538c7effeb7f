package config

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "ORDERCASH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ORDERCASH_DB_DSN"
	EnvDBHost = "ORDERCASH_DB_HOST"
	EnvDBUser = "ORDERCASH_DB_USER"
	EnvDBName = "ORDERCASH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
