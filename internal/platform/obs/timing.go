package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Time logs how long the named operation took once the returned func runs.
// Use as `defer obs.Time(ctx, "op")(&err)` so a failed call is logged with its error.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Warn().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Err(*errp).Msg("op_failed")
			return
		}
		logger.Debug().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Msg("op_done")
	}
}
