// Package config loads typed configuration structs from the process
// environment.
//
// Values are read with github.com/caarlos0/env/v11 after an optional pass
// over .env files through github.com/joho/godotenv. Each struct type is parsed
// once and cached; later calls for the same type (and prefix) are served from
// the cache.
//
// Every billing component owns its own Config struct:
//
//	var cfg asaas.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Structs implementing Validator are checked after parsing, so a malformed
// gateway URL or an unknown log level fails at startup rather than on the
// first request.
//
// Tests that mutate the environment should call ResetCache.
package config
