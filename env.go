package zodmon

import (
	"log/slog"
	"os"
	"strconv"
)

// Environment variables read by OptionsFromEnv.
const (
	EnvBaseURL      = "ZODMON_BASE_URL"
	EnvValidate     = "ZODMON_VALIDATE"
	EnvTransform    = "ZODMON_TRANSFORM"
	EnvSendDefaults = "ZODMON_SEND_DEFAULTS"
)

// OptionsFromEnv returns options for the ZODMON_* environment variables that
// are set. Invalid values log a warning and are ignored.
//
//	opts := append(zodmon.OptionsFromEnv(), zodmon.WithLogger(logger))
//	client, err := zodmon.New(endpoints, opts...)
func OptionsFromEnv() []Option {
	var opts []Option

	if v := os.Getenv(EnvBaseURL); v != "" {
		opts = append(opts, WithBaseURL(v))
	}
	if v := os.Getenv(EnvValidate); v != "" {
		mode, err := ParseValidateMode(v)
		if err != nil {
			slog.Warn("invalid validate mode env var, using default", "key", EnvValidate, "value", v, "default", ValidateAll.String()) //nolint:gosec // G706: values are structured log fields, not format strings
		} else {
			opts = append(opts, WithValidate(mode))
		}
	}
	if v := os.Getenv(EnvTransform); v != "" {
		mode, err := ParseTransformMode(v)
		if err != nil {
			slog.Warn("invalid transform mode env var, using default", "key", EnvTransform, "value", v, "default", TransformAll.String()) //nolint:gosec // G706: values are structured log fields, not format strings
		} else {
			opts = append(opts, WithTransform(mode))
		}
	}
	if v := os.Getenv(EnvSendDefaults); v != "" {
		opts = append(opts, WithSendDefaults(envBool(EnvSendDefaults, false)))
	}

	return opts
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}
