package initializers

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger. Debug mode writes
// human-readable console output; otherwise JSON lines go to stdout.
func InitLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if gin.Mode() == gin.DebugMode {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    true,
		})
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().
		Str("service", "oracomigo").
		Timestamp().
		Logger()
}
