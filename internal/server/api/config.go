package api

// ServerConfig represents the API section of the serve subcommand configuration.
type ServerConfig struct {
	Addr     string `help:"API server listen address" default:":9512" env:"PSMS_API_ADDR"`
	Password string `help:"Password clients must present; empty disables authentication" env:"PSMS_API_PASSWORD"`
}
