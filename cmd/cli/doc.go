// Package cli assembles the gitstate root command: it layers embedded
// defaults, configuration files, and environment variables through Viper,
// builds the zap logger the subcommands share, and registers the scan
// command hierarchy on a Cobra root.
package cli
