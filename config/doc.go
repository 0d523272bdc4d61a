// Package config loads service configuration from YAML files and the
// environment using viper, with optional .env loading via godotenv.
//
// Precedence is environment over .env over YAML file. Services compose a
// config struct out of section structs (server, logger, auth, feed) and
// call LoadConfig once at startup:
//
//	var cfg feedd.Config
//	err := config.LoadConfig("feedd", &cfg)
package config
