package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MuratFaizulla/mediapleer/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 5000,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	logPath = configVar[string]{
		envKey:       "SERVER_LOG_PATH",
		flagKey:      "log-path",
		defaultValue: "",
	}
	roomTTL = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_TTL",
		flagKey:      "room-ttl",
		defaultValue: 24 * time.Hour,
	}
	commandHistoryLimit = configVar[int]{
		envKey:       "SERVER_COMMAND_HISTORY_LIMIT",
		flagKey:      "command-history-limit",
		defaultValue: 100,
	}
	uploadsDir = configVar[string]{
		envKey:       "SERVER_UPLOADS_DIR",
		flagKey:      "uploads-dir",
		defaultValue: "./uploads",
	}
	uploadIndexPath = configVar[string]{
		envKey:       "SERVER_UPLOAD_INDEX_PATH",
		flagKey:      "upload-index-path",
		defaultValue: "./uploads.db",
	}
	uploadMaxBytes = configVar[int64]{
		envKey:       "SERVER_UPLOAD_MAX_BYTES",
		flagKey:      "upload-max-bytes",
		defaultValue: 500 << 20,
	}
	uploadMaxAge = configVar[time.Duration]{
		envKey:       "SERVER_UPLOAD_MAX_AGE",
		flagKey:      "upload-max-age",
		defaultValue: 24 * time.Hour,
	}
	cleanupInterval = configVar[time.Duration]{
		envKey:       "SERVER_CLEANUP_INTERVAL",
		flagKey:      "cleanup-interval",
		defaultValue: time.Hour,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(logPath.flagKey, logPath.defaultValue, "Log file path, empty for stdout")
	pflag.Duration(roomTTL.flagKey, roomTTL.defaultValue, "Idle room expiration")
	pflag.Int(commandHistoryLimit.flagKey, commandHistoryLimit.defaultValue, "Maximum number of commands kept in room history")
	pflag.String(uploadsDir.flagKey, uploadsDir.defaultValue, "Directory for uploaded media files")
	pflag.String(uploadIndexPath.flagKey, uploadIndexPath.defaultValue, "Path to the upload index database")
	pflag.Int64(uploadMaxBytes.flagKey, uploadMaxBytes.defaultValue, "Maximum uploaded file size in bytes")
	pflag.Duration(uploadMaxAge.flagKey, uploadMaxAge.defaultValue, "Age after which uploaded files are deleted")
	pflag.Duration(cleanupInterval.flagKey, cleanupInterval.defaultValue, "Interval between upload cleanup runs")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(logPath.flagKey, logPath.envKey)
	viper.BindEnv(roomTTL.flagKey, roomTTL.envKey)
	viper.BindEnv(commandHistoryLimit.flagKey, commandHistoryLimit.envKey)
	viper.BindEnv(uploadsDir.flagKey, uploadsDir.envKey)
	viper.BindEnv(uploadIndexPath.flagKey, uploadIndexPath.envKey)
	viper.BindEnv(uploadMaxBytes.flagKey, uploadMaxBytes.envKey)
	viper.BindEnv(uploadMaxAge.flagKey, uploadMaxAge.envKey)
	viper.BindEnv(cleanupInterval.flagKey, cleanupInterval.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(logPath.flagKey, logPath.defaultValue)
	viper.SetDefault(roomTTL.flagKey, roomTTL.defaultValue)
	viper.SetDefault(commandHistoryLimit.flagKey, commandHistoryLimit.defaultValue)
	viper.SetDefault(uploadsDir.flagKey, uploadsDir.defaultValue)
	viper.SetDefault(uploadIndexPath.flagKey, uploadIndexPath.defaultValue)
	viper.SetDefault(uploadMaxBytes.flagKey, uploadMaxBytes.defaultValue)
	viper.SetDefault(uploadMaxAge.flagKey, uploadMaxAge.defaultValue)
	viper.SetDefault(cleanupInterval.flagKey, cleanupInterval.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Host:                viper.GetString(host.flagKey),
		Port:                viper.GetInt(port.flagKey),
		LogLevel:            viper.GetString(logLevel.flagKey),
		LogPath:             viper.GetString(logPath.flagKey),
		RoomTTL:             viper.GetDuration(roomTTL.flagKey),
		CommandHistoryLimit: viper.GetInt(commandHistoryLimit.flagKey),
		UploadsDir:          viper.GetString(uploadsDir.flagKey),
		UploadIndexPath:     viper.GetString(uploadIndexPath.flagKey),
		UploadMaxBytes:      viper.GetInt64(uploadMaxBytes.flagKey),
		UploadMaxAge:        viper.GetDuration(uploadMaxAge.flagKey),
		CleanupInterval:     viper.GetDuration(cleanupInterval.flagKey),
		RedisPort:           viper.GetInt(redisPort.flagKey),
		RedisHost:           viper.GetString(redisHost.flagKey),
		RedisPassword:       viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
