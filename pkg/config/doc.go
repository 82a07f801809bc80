// Package config loads component configuration from environment variables.
//
// Each kcidb package declares a Config struct whose fields carry `env` and
// `envDefault` tags; Load fills such a struct using
// github.com/caarlos0/env/v11, after reading an optional .env file from the
// working directory with github.com/joho/godotenv:
//
//	var cfg spool.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Variables already present in the process environment win over values from
// .env files. LoadEnv reads additional files explicitly; WithPrefix loads a
// second copy of a struct from a namespaced set of variables, for example a
// test database next to the production one.
package config
