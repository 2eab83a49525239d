// ABOUTME: Configuration package for the capture server
// ABOUTME: YAML file loading, validation and flag overrides
// Package config loads the capture server configuration.
//
// Values come from Default, then an optional YAML file, then any flag set
// explicitly on the command line.
//
// Example:
//
//	flagCfg := config.Default()
//	config.RegisterFlags(flag.CommandLine, flagCfg)
//	flag.Parse()
//
//	cfg, err := config.Load("capture.yaml")
//	config.ApplyFlags(cfg, flag.CommandLine, flagCfg)
package config
