package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Newはアプリ共通のロガーを作る。devは見やすいコンソール出力、それ以外はJSON
func New(goEnv string, level string) zerolog.Logger {
	return NewWithWriter(goEnv, level, os.Stdout)
}

func NewWithWriter(goEnv string, level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if goEnv == "dev" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "ecshop").
		Logger()
}
