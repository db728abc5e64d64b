package cli

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/stagegrid/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that mirror the flags.
const EnvPrefix = "STAGEGRID"

// bindSettings returns a viper instance resolving every flag of cmd, with
// STAGEGRID_<FLAG> environment variables as fallback for unset flags.
func bindSettings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// appConfig reads the application configuration out of v.
func appConfig(v *viper.Viper, path string) (*app.Config, error) {
	return app.NewConfig(app.Config{
		ConfigPath:      path,
		Arrangement:     v.GetString("arrangement"),
		LogFormat:       v.GetString("log-format"),
		LogLevel:        v.GetString("log-level"),
		HealthcheckPort: v.GetInt("healthcheck-port"),
		Workers:         v.GetInt("workers"),
		QueueSize:       v.GetInt("queue-size"),
		Inputs:          v.GetStringMapString("input"),
		WatchDebounce:   v.GetDuration("debounce"),
	})
}
