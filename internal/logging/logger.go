// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	// MaxSizeMB is the rotation threshold for LogFileName.
	MaxSizeMB  int
	MaxBackups int
}

// Setup applies params to the standard logrus logger and returns the writer
// it logs to.
func Setup(params Params) io.Writer {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.LogFileName == "" {
		logrus.SetOutput(os.Stdout)
		logrus.Debug("writing logs only to STDOUT")
		return os.Stdout
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}
	if params.MaxSizeMB <= 0 {
		params.MaxSizeMB = 50
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    params.MaxSizeMB, // megabytes
		MaxBackups: params.MaxBackups,
		LocalTime:  false, // UTC
		Compress:   true,
	}

	var out io.Writer = lumberJackLogger
	if params.LogToStdout {
		out = io.MultiWriter(os.Stdout, lumberJackLogger)
		logrus.SetOutput(out)
		logrus.Debug("writing logs to file and STDOUT")
		return out
	}
	logrus.SetOutput(out)
	return out
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "trace":
		return logrus.TraceLevel
	case "warn", "warning":
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}
