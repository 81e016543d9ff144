package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PURCHASE_STORAGE_DSN.
const EnvPrefix = "PURCHASE"

// Load builds a Pipeline from defaults, an optional config file (JSON or
// YAML, chosen by extension) and PURCHASE_* environment variables. An empty
// path skips the file. A .env file in the working directory, when present,
// is loaded into the environment first; variables already set win.
func Load(path string) (Pipeline, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Pipeline{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var p Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config: %w", err)
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	return p, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("job", d.Job)
	v.SetDefault("products.path", "")
	v.SetDefault("order_products.path", "")
	for k, val := range d.Parser.Options {
		v.SetDefault("parser.options."+k, val)
	}
	v.SetDefault("report.path", "")
	v.SetDefault("report.crlf", false)
	v.SetDefault("rejects.path", "")
	v.SetDefault("storage.kind", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.table", d.Storage.Table)
	v.SetDefault("metrics.backend", d.Metrics.Backend)
	v.SetDefault("metrics.pushgateway_url", d.Metrics.PushgatewayURL)
	v.SetDefault("metrics.statsd_addr", d.Metrics.StatsdAddr)
	v.SetDefault("metrics.namespace", "")
}
