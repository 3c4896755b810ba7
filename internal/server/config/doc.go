// Package config defines the quizrally-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masks secrets before the config is logged
//
// Values are loaded through internal/infra/confloader from the YAML file
// and QUIZRALLY_ environment variables on top of Default().
package config
