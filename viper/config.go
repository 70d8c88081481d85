// Package viper loads html2md configuration from a JSON or YAML file with
// environment overrides.
package viper

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/html2md"
	"github.com/spf13/viper"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.json"

// EnvPrefix prefixes environment overrides, e.g. HTML2MD_GEMINI_MODEL.
const EnvPrefix = "HTML2MD"

// Configuration keys.
const (
	keyModel          = "gemini.model"
	keyThinkingBudget = "gemini.thinking_budget"
	keyMaxRetries     = "gemini.max_retries"
	keyRetryDelayBase = "gemini.retry_delay_base"
	keyTimeout        = "gemini.timeout"
	keyMaxInputBytes  = "gemini.max_input_bytes"
	keyMaxInputTokens = "gemini.max_input_tokens"
	keyMaxConcurrent  = "processing.max_concurrent"
	keyRateLimit      = "processing.rate_limit_per_minute"
	keyBackend        = "processing.backend"
	keyRemoveTags     = "html_cleaning.remove_tags"
	keyExtractor      = "html_cleaning.extractor"
	keySeparator      = "output.separator"
	keyAddHeaders     = "output.add_headers"
	keyLogLevel       = "logging.level"
	keyLogFile        = "logging.file"
	keyLogMaxBytes    = "logging.max_bytes"
	keyLogBackups     = "logging.backup_count"
)

// Load reads the configuration at path. A missing file yields the defaults
// unless explicit is set, in which case it is an EINVALID error. The result
// is not validated; callers apply their overrides and then call Validate.
func Load(path string, explicit bool) (html2md.Config, error) {
	v := newViper()

	if path == "" {
		path = DefaultPath
	}
	_, err := os.Stat(path)
	switch {
	case err == nil:
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return html2md.Config{}, html2md.Errorf(html2md.EINVALID, "read config %s: %v", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return html2md.Config{}, html2md.Errorf(html2md.EINVALID, "config file %s not found", path)
	default:
		return html2md.Config{}, html2md.Errorf(html2md.EINVALID, "stat config %s: %v", path, err)
	}

	return decode(v), nil
}

func newViper() *viper.Viper {
	d := html2md.DefaultConfig()
	v := viper.New()
	v.SetDefault(keyModel, d.Model)
	v.SetDefault(keyThinkingBudget, d.ThinkingBudget)
	v.SetDefault(keyMaxRetries, d.MaxRetries)
	v.SetDefault(keyRetryDelayBase, d.RetryBaseDelay.Seconds())
	v.SetDefault(keyTimeout, d.RequestTimeout.Seconds())
	v.SetDefault(keyMaxInputBytes, d.MaxInputBytes)
	v.SetDefault(keyMaxInputTokens, d.MaxInputTokens)
	v.SetDefault(keyMaxConcurrent, d.MaxConcurrent)
	v.SetDefault(keyRateLimit, d.RateLimitPerMinute)
	v.SetDefault(keyBackend, d.Backend)
	v.SetDefault(keyRemoveTags, d.RemoveTags)
	v.SetDefault(keyExtractor, d.Extractor)
	v.SetDefault(keySeparator, d.Separator)
	v.SetDefault(keyAddHeaders, d.AddHeaders)
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyLogFile, d.LogFile)
	v.SetDefault(keyLogMaxBytes, d.LogMaxBytes)
	v.SetDefault(keyLogBackups, d.LogBackups)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) html2md.Config {
	return html2md.Config{
		Model:              v.GetString(keyModel),
		ThinkingBudget:     v.GetInt(keyThinkingBudget),
		MaxRetries:         v.GetInt(keyMaxRetries),
		RetryBaseDelay:     seconds(v.GetFloat64(keyRetryDelayBase)),
		RequestTimeout:     seconds(v.GetFloat64(keyTimeout)),
		MaxInputBytes:      v.GetInt(keyMaxInputBytes),
		MaxInputTokens:     v.GetInt(keyMaxInputTokens),
		MaxConcurrent:      v.GetInt(keyMaxConcurrent),
		RateLimitPerMinute: v.GetInt(keyRateLimit),
		Backend:            strings.ToLower(v.GetString(keyBackend)),
		RemoveTags:         v.GetStringSlice(keyRemoveTags),
		Extractor:          strings.ToLower(v.GetString(keyExtractor)),
		Separator:          v.GetString(keySeparator),
		AddHeaders:         v.GetBool(keyAddHeaders),
		LogLevel:           strings.ToLower(v.GetString(keyLogLevel)),
		LogFile:            v.GetString(keyLogFile),
		LogMaxBytes:        v.GetInt(keyLogMaxBytes),
		LogBackups:         v.GetInt(keyLogBackups),
	}
}

// seconds converts fractional seconds, as written in config files, to a
// Duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
