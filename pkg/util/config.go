package util

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ReadConfig. loads ./data/config.yaml, env vars override file values (hazard.cost.effect_radius_meters -> HAZARD_COST_EFFECT_RADIUS_METERS).
func ReadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./data/")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
