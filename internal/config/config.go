package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"webview-cli/internal/fault"
	"webview-cli/pkg/models"
)

// EnvPrefix is prepended to every key when read from the environment,
// e.g. WEBVIEW_HOST.
const EnvPrefix = "WEBVIEW"

const fileName = ".webview-cli"

// Settings is the device and runtime configuration.
type Settings struct {
	Host      string `mapstructure:"host" json:"host"`
	Port      int    `mapstructure:"http_port" json:"http_port"`
	Username  string `mapstructure:"username" json:"username"`
	Password  string `mapstructure:"password" json:"-"`
	TimeoutMS int    `mapstructure:"http_timeout" json:"http_timeout"`
	PollMS    int    `mapstructure:"poll_interval" json:"poll_interval"`
	Model     string `mapstructure:"model" json:"model"`
	Verbose   bool   `mapstructure:"verbose" json:"verbose"`
	PTZSpeed  int    `mapstructure:"ptz_speed" json:"ptz_speed"`
	Listen    string `mapstructure:"listen" json:"listen"`
}

// Timeout is the per-request transport timeout.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// PollInterval is the periodic poll interval. Zero or less disables polling.
func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.PollMS) * time.Millisecond
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 80)
	v.SetDefault("http_timeout", 5000)
	v.SetDefault("poll_interval", 2000)
	v.SetDefault("model", models.Models[0].ID)
	v.SetDefault("ptz_speed", 50)
	v.SetDefault("listen", ":9110")
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".webview-cli" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(fileName)
	}

	SetDefaults(viper.GetViper())
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing file is fine; flags and env may carry everything.
	_ = viper.ReadInConfig()
}

// Load unmarshals and validates the global configuration.
func Load() (Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fault.New(fault.KindConfig, "load config", errors.Join(fault.ErrInvalidConfig, err))
	}
	s.Host = strings.TrimRight(strings.TrimSpace(s.Host), "/")
	return s, s.Validate()
}

// Validate checks every field against its accepted range.
func (s Settings) Validate() error {
	var errs []error
	if s.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("http_port %d out of range 1..65535", s.Port))
	}
	if s.TimeoutMS < 500 || s.TimeoutMS > 60000 {
		errs = append(errs, fmt.Errorf("http_timeout %dms out of range 500..60000", s.TimeoutMS))
	}
	if s.PTZSpeed < 0 {
		errs = append(errs, fmt.Errorf("ptz_speed %d must not be negative", s.PTZSpeed))
	}
	if s.Model != "" && models.LookupModel(s.Model).ID != s.Model {
		errs = append(errs, fmt.Errorf("unknown model %q", s.Model))
	}
	if len(errs) == 0 {
		return nil
	}
	return fault.New(fault.KindConfig, "validate config", errors.Join(append([]error{fault.ErrInvalidConfig}, errs...)...))
}

// SaveDevice writes the device section back to the config file.
func SaveDevice(s Settings) error {
	return SaveDeviceTo(viper.GetViper(), s)
}

// SaveDeviceTo writes the device section held by v to its config file,
// creating $HOME/.webview-cli.yaml when no file is in use yet.
func SaveDeviceTo(v *viper.Viper, s Settings) error {
	v.Set("host", s.Host)
	v.Set("http_port", s.Port)
	v.Set("username", s.Username)
	v.Set("password", s.Password)
	v.Set("model", s.Model)

	if err := v.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v.SafeWriteConfig()
		}
		if f := v.ConfigFileUsed(); f != "" {
			return v.WriteConfigAs(f)
		}
		home, herr := os.UserHomeDir()
		if herr != nil {
			return herr
		}
		return v.WriteConfigAs(filepath.Join(home, fileName+".yaml"))
	}
	return nil
}
