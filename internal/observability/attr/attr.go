// Package attr holds the slog attribute helpers used across crownkeeper so
// log keys stay consistent between packages.
package attr

import (
	"log/slog"
	"time"
)

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Time(key string, value time.Time) slog.Attr { return slog.Time(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

// Error records err under the "error" key. A nil error logs as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Operation tags a log line with the game operation that produced it.
func Operation(name string) slog.Attr { return slog.String("operation", name) }

// PlayerID tags a log line with a player id.
func PlayerID(id string) slog.Attr { return slog.String("player_id", id) }

// RoundNumber tags a log line with a 1-based round number.
func RoundNumber(n int) slog.Attr { return slog.Int("round_number", n) }
