// Package log 提供基于 zerolog 的日志工具，支持 stderr 控制台和文件输出（lumberjack 轮转）.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/docshield/docshield/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 初始化全局 logger.
func Init() {
	initOnce.Do(initLogger)
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", s)

		return zerolog.InfoLevel
	}

	return lvl
}

// buildOutput 组装日志输出：stderr 控制台始终开启，文件输出按配置追加.
func buildOutput(logCfg *configs.LogConfig) io.Writer {
	console := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.Kitchen
	})

	if !logCfg.EnableFile {
		return console
	}

	return io.MultiWriter(console, &lumberjack.Logger{
		Filename:   logCfg.FilePath,
		MaxSize:    logCfg.MaxSize,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAge,
		Compress:   logCfg.Compress,
	})
}

func initLogger() {
	cfg := configs.GetConfig()

	zerolog.SetGlobalLevel(parseLevel(cfg.Log.Level))

	ctx := zerolog.New(buildOutput(&cfg.Log)).With().Str("service", "docshield")

	if cfg.Server.Debug {
		ctx = ctx.Caller().Stack()

		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger = ctx.Timestamp().Logger()
	log.Logger = logger
}

// Logger 返回全局 logger，首次调用时完成初始化.
func Logger() *zerolog.Logger {
	initOnce.Do(initLogger)

	return &logger
}

// GinWriter 把 Gin 自己写出的文本行转发为指定级别的 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	w.logger.WithLevel(w.level).Msg(strings.TrimSpace(string(p)))

	return len(p), nil
}
