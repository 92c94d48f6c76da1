package config

import (
	"errors"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/moyu-x/rmdup/internal"
)

type Config struct {
	Scanner struct {
		FollowSymlinks bool   `mapstructure:"follow_symlinks"`
		MinSize        string `mapstructure:"min_size"`
		Prefilter      bool   `mapstructure:"prefilter"`
	} `mapstructure:"scanner"`
	Performance struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"performance"`
	Safety struct {
		Verify bool `mapstructure:"verify"`
	} `mapstructure:"safety"`
	Logging struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"logging"`
}

// Load 读取配置文件与 RMDUP_ 前缀的环境变量
// path 为空时按默认路径查找 config.yaml，找不到配置文件不视为错误
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("scanner.follow_symlinks", false)
	v.SetDefault("scanner.min_size", "0")
	v.SetDefault("scanner.prefilter", true)
	v.SetDefault("performance.workers", runtime.NumCPU())
	v.SetDefault("safety.verify", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetEnvPrefix(internal.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/" + internal.ConfigDirName)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/rmdup")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Performance.Workers < 1 {
		cfg.Performance.Workers = 1
	}

	return &cfg, nil
}
