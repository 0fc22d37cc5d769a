package bootstrap

import (
	"errors"
	"log"

	"github.com/adelabdelgawad/auth-base/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := validateDirectoryConfig(cfg); err != nil {
		log.Fatalf("Invalid directory configuration: %v", err)
	}
}

// validateDirectoryConfig rejects a partially configured directory. A fully
// unconfigured directory is allowed: only the local admin can sign in then.
func validateDirectoryConfig(cfg *config.Config) error {
	if cfg.ADServer == "" {
		if cfg.ADBindUsername != "" || cfg.OUParentBase != "" {
			return errors.New("AD_SERVER is required when directory settings are provided")
		}
		return nil
	}
	if cfg.ADBindUsername == "" || cfg.ADBindPassword == "" {
		return errors.New("AD_BIND_USERNAME and AD_BIND_PASSWORD are required when AD_SERVER is set")
	}
	if cfg.ADBaseDN == "" {
		return errors.New("AD_BASE_DN is required when AD_SERVER is set")
	}
	return nil
}
