package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	project "github.com/toejough/impspy/spygen/run/1_project"
)

const (
	configBaseName   = "spygen"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	dirFlagName      = "dir"
	verboseFlagName  = "verbose"
	logFileFlagName  = "log-file"
	classFlagName    = "class"
	overlayFlagName  = "overlay"
	diffFlagName     = "diff"
	nativeFlagName   = "include-native"
	parallelFlagName = "parallel"
	formatFlagName   = "format"

	classConfigKey    = "rewrite.classes"
	overlayConfigKey  = "rewrite.overlay"
	nativeConfigKey   = "rewrite.include_native"
	parallelConfigKey = "run.parallel"
	formatConfigKey   = "list.format"

	defaultParallel = 0
	defaultFormat   = formatTable

	envPrefix = "SPYGEN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".spygen.log"
	defaultLogLevel      = "info"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)

	// go:generate runs in the package directory; settings at the module root still apply.
	root, err := project.FindRoot(project.OS{}, "")
	if err == nil {
		viper.AddConfigPath(root)
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(classConfigKey, []string{})
	viper.SetDefault(overlayConfigKey, "")
	viper.SetDefault(nativeConfigKey, false)
	viper.SetDefault(parallelConfigKey, defaultParallel)
	viper.SetDefault(formatConfigKey, defaultFormat)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		slog.Warn("failed to read config", "file", configFileName, "err", err)
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger builds the logger every command writes to: a rotating text log at
// Info, or at Debug when verbose.
func configureLogger(logPath string, verbose bool) *slog.Logger {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	}))
	slog.SetDefault(logger)

	return logger
}
