// Package cli wires the Cobra root command, Viper-backed configuration, and
// zap structured logging for the copybara binary, and assembles the
// migrate subcommand tree from internal/workflow and its collaborators.
package cli
