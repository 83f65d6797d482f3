package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged rolling.
// All rolls are logged at debug level with a label, the bound, and the result.
//
// Roller itself satisfies Source, so it can be handed to any consumer of Source.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped Source and logs the draw.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice roll",
		zap.Int("n", n),
		zap.Int("result", v),
	)
	return v
}

// Chance is the logged form of the package-level Chance.
//
// Postcondition: identical outcome to Chance(src, p) for the same underlying draws.
func (r *Roller) Chance(label string, p float64) bool {
	ok := Chance(r.src, p)
	r.logger.Debug("chance roll",
		zap.String("label", label),
		zap.Float64("p", p),
		zap.Bool("success", ok),
	)
	return ok
}

// Range is the logged form of the package-level Range.
//
// Postcondition: lo <= result <= hi when hi > lo; otherwise result == lo.
func (r *Roller) Range(label string, lo, hi int) int {
	v := Range(r.src, lo, hi)
	r.logger.Debug("range roll",
		zap.String("label", label),
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("result", v),
	)
	return v
}
