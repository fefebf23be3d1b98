package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig controls level, format and file rotation.
type LogConfig struct {
	Level      string
	Format     string
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

var (
	log = newDefault()
	mu  sync.Mutex
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Init configures the shared logger. Output goes to stdout and, when a path is
// set, to a rotated app.log file.
func Init(cfg LogConfig) error {
	mu.Lock()
	defer mu.Unlock()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	writers := []io.Writer{os.Stdout}
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return fmt.Errorf("logger: create %s: %w", cfg.Path, err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Path, "app.log"),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// L returns the shared logger.
func L() *logrus.Logger {
	return log
}

// SetOutput redirects the shared logger, mostly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}

func WithError(err error) *logrus.Entry {
	return log.WithError(err)
}

func WithModule(module string) *logrus.Entry {
	return log.WithField("module", module)
}
