package log

import (
"os"
"time"

"github.com/rs/zerolog"
)

// NewLogger создаёт настроенный zerolog. В dev-режиме пишет человекочитаемый
// вывод и включает debug-уровень.
func NewLogger(appEnv string) zerolog.Logger {
zerolog.TimeFieldFormat = time.RFC3339
level := zerolog.InfoLevel
if appEnv == "dev" {
level = zerolog.DebugLevel
logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger().Level(level)
return logger
}
return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
}
