package main

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/kelseyhightower/envconfig"
	"github.com/m-zajac/ghanalyzer/internal/database"
	"github.com/pelletier/go-toml/v2"
)

// envPrefix is the prefix of config environment variables, e.g. GHANALYZER_GITHUBAPITOKEN.
const envPrefix = "ghanalyzer"

// Config is the container for app configuration.
// Values are read from env, then overridden by non-zero values from optional toml file.
type Config struct {
	// GithubAPIAddress - address for rest api with protocol
	GithubAPIAddress string `default:"https://api.github.com" toml:"github_api_address"`

	// GithubAPIToken - auth token for rest github api (optional, rate limit is lower without this token)
	GithubAPIToken string `default:"" toml:"github_api_token"`

	// GithubAPIRateLimit - max frequency for github rest api calls, 0 means unlimited
	GithubAPIRateLimit float64 `default:"0.5" toml:"github_api_rate_limit"`

	// GithubAPIBurst - number of github api calls allowed at once
	GithubAPIBurst int `default:"1" toml:"github_api_burst"`

	// GithubAPITimeout - timeout of a single github api http call
	GithubAPITimeout Duration `default:"30s" toml:"github_api_timeout"`

	// Concurrency - maximum number of issue pages fetched at once
	Concurrency int `default:"4" toml:"concurrency"`

	// CacheSize - maximum number of elements in memory cache for each github client method
	CacheSize int `default:"10000" toml:"cache_size"`

	// CacheTTL - maximum lifetime for memory cache entries
	CacheTTL Duration `default:"10m" toml:"cache_ttl"`

	// StoreDriver - persistent store for github data: bolt, redis or memcached
	StoreDriver string `default:"bolt" toml:"store_driver"`

	// StorePath - filepath for bolt db data
	StorePath string `default:"./github.data" toml:"store_path"`

	// StoreBucket - bolt db bucket name, or key prefix for redis and memcached
	StoreBucket string `default:"github" toml:"store_bucket"`

	// StoreAddr - redis address, or comma separated memcached servers
	StoreAddr string `default:"" toml:"store_addr"`

	// StoreUsername - redis username
	StoreUsername string `default:"" toml:"store_username"`

	// StorePassword - redis password
	StorePassword string `default:"" toml:"store_password"`

	// StoreDB - redis database number
	StoreDB int `default:"0" toml:"store_db"`

	// DataTTL - maximum lifetime for stale data in store
	DataTTL Duration `default:"8h" toml:"data_ttl"`

	// DataRefreshTTL - maximum lifetime for stale data to be queued for refresh
	DataRefreshTTL Duration `default:"1h" toml:"data_refresh_ttl"`

	// HTTPServerAddress - listen address for http server
	HTTPServerAddress string `default:"0.0.0.0:8080" toml:"http_server_address"`

	// HTTPProfileServerAddress - listen address for profiler http server. If empty, profiler server is disabled
	HTTPProfileServerAddress string `default:"" toml:"http_profile_server_address"`

	// HTTPRequestTimeout - timeout for http request handling
	HTTPRequestTimeout Duration `default:"60s" toml:"http_request_timeout"`

	// GRPCServerAddress - listen address for grpc server
	GRPCServerAddress string `default:"0.0.0.0:9090" toml:"grpc_server_address"`

	// ServiceResponseTimeout - timeout for service execution in server mode
	ServiceResponseTimeout Duration `default:"30s" toml:"service_response_timeout"`

	// LogLevel - one of logrus levels
	LogLevel string `default:"info" toml:"log_level"`

	// OTLPEndpoint - otlp/http traces endpoint url. If empty, tracing is disabled
	OTLPEndpoint string `default:"" toml:"otlp_endpoint"`
}

// Duration is time.Duration readable from env and toml strings like "10m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// D returns d as time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// storeConfig returns kv store settings.
func (c Config) storeConfig() database.Config {
	return database.Config{
		Driver:     c.StoreDriver,
		Path:       c.StorePath,
		Bucket:     c.StoreBucket,
		Addr:       c.StoreAddr,
		Username:   c.StoreUsername,
		Password:   c.StorePassword,
		DB:         c.StoreDB,
		Expiration: c.DataTTL.D(),
	}
}

// loadConfig reads config from env and, if path is not empty, merges toml file over it.
func loadConfig(path string) (Config, error) {
	var conf Config
	if err := envconfig.Process(envPrefix, &conf); err != nil {
		return conf, fmt.Errorf("parsing env config: %w", err)
	}
	if path == "" {
		return conf, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("reading config file: %w", err)
	}
	var fileConf Config
	if err := toml.Unmarshal(data, &fileConf); err != nil {
		return conf, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := mergo.Merge(&conf, fileConf, mergo.WithOverride); err != nil {
		return conf, fmt.Errorf("merging config file %s: %w", path, err)
	}

	return conf, nil
}
