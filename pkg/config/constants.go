package config

// EnvPrefix is passed to envconfig; individual fields carry full variable names.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "QUICKBITE_DB_DSN"
	EnvDBHost = "QUICKBITE_DB_HOST"
	EnvDBUser = "QUICKBITE_DB_USER"
	EnvDBName = "QUICKBITE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
