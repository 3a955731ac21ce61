// Package utils exposes reusable ambient helpers consumed by multiple
// commands: ConfigurationLoader and LoggerFactory integrate Viper,
// environment variables, and zap logging for the CLI, independent of any
// migration-domain logic.
package utils
