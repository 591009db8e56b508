package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	ctxpkg "github.com/baechuer/account-service/internal/pkg/context"
)

// ServiceName tags every line so account logs can be told apart in a shared
// sink.
const ServiceName = "account-service"

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures Logger from LOG_LEVEL (default info) and
// LOG_FORMAT ("json" or "console", default console).
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if os.Getenv("LOG_FORMAT") != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	zlog.Logger = Logger
}

// WithCtx returns Logger tagged with the request id and, for signed-in
// callers, the user id carried by ctx.
func WithCtx(ctx context.Context) *zerolog.Logger {
	c := Logger.With()
	if rid := ctxpkg.GetRequestID(ctx); rid != "" {
		c = c.Str("request_id", rid)
	}
	if uid := ctxpkg.GetUserID(ctx); uid != "" {
		c = c.Str("user_id", uid)
	}
	l := c.Logger()
	return &l
}
