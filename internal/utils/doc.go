// Package utils exposes reusable helpers consumed by the siteguard commands.
//
// It houses the ConfigurationLoader, which layers embedded defaults, config
// files, and environment variables through Viper, the LoggerFactory that
// builds zap loggers bound to standard error, and FlushingWriter used to
// stream annotations line by line.
package utils
