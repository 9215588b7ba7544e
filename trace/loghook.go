package trace

import (
	"github.com/rs/zerolog"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/ratsim/timing/core"
	"github.com/sarchlab/ratsim/timing/rename"
)

// LogHook forwards renaming events to a structured logger. Faults are logged
// at warn level, everything else at debug level.
type LogHook struct {
	logger zerolog.Logger
}

// NewLogHook creates a LogHook writing to logger.
func NewLogHook(logger zerolog.Logger) *LogHook {
	return &LogHook{logger: logger}
}

// Func implements sim.Hook.
func (h *LogHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case rename.HookPosAllocate:
		result := ctx.Detail.(rename.RenameResult)
		h.logger.Debug().
			Int("arch", result.Arch).
			Stringer("old", result.Old).
			Stringer("new", result.New).
			Msg("allocate")
		return
	case rename.HookPosFree:
		h.logger.Debug().Int("phys", ctx.Detail.(int)).Msg("free")
		return
	}

	dec, ok := ctx.Item.(*core.Decision)
	if !ok {
		return
	}

	switch ctx.Pos {
	case core.HookPosInstStart:
		h.logger.Debug().Int("inst", dec.Index).Str("text", instText(dec)).Msg("instruction")
	case core.HookPosSourceLookup:
		lookup := ctx.Detail.(core.SourceLookup)
		h.logger.Debug().
			Int("inst", dec.Index).
			Int("arch", lookup.Arch).
			Stringer("phys", lookup.Phys).
			Msg("source lookup")
	case core.HookPosRenameSkipped:
		h.logger.Debug().Int("inst", dec.Index).Int("arch", ctx.Detail.(int)).Msg("rename skipped")
	case core.HookPosConverted:
		h.logger.Debug().Int("inst", dec.Index).Str("converted", ctx.Detail.(string)).Msg("converted")
	case core.HookPosFault:
		h.logger.Warn().Int("inst", dec.Index).Err(ctx.Detail.(error)).Msg("instruction aborted")
	}
}
