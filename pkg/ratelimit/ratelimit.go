// Package ratelimit rewrites sliced G-code so that no linear move
// executes faster than a configured maximum command rate. Moves whose
// predicted execution time is too short get their feed rate lowered to
// the minimum value that satisfies the limit, subject to a floor print
// speed, and the cumulative extra print time is folded back into the
// slicer's ;TIME_ELAPSED: annotations.
//
// The transform is a single in-order pass over the job's layers: one
// motion state record carries the feed rate and position across layer
// boundaries, matching continuous physical motion.
package ratelimit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/config"
	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/errors"
	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/gcode"
	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/log"
	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/metrics"
)

// motionState carries feed rate and position across lines and layers.
// One value is threaded through a full pass and then discarded.
type motionState struct {
	feedRate    int // last explicit or restored feed rate, mm/min
	hasFeedRate bool

	lastX, lastY float64
	hasX, hasY   bool

	// adjustedFeedRate is the most recent injected override, or 0 when
	// the last move ran at its natural rate.
	adjustedFeedRate int

	// extraTime is the total print time in seconds added by all
	// overrides so far. Monotonically non-decreasing.
	extraTime float64
}

// Processor performs the rate-limiting pass over a print job's layers.
type Processor struct {
	settings Settings

	minSegmentTime float64 // seconds, 1/maxPerSec
	minPrintSpeed  float64 // mm/s, after clamping
	minFeedRate    int     // mm/min floor for injected feed rates

	logger *log.Logger
	reg    *metrics.Registry
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger routes progress messages and per-line debug tracing.
func WithLogger(l *log.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithMetrics records pass counters into the given registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(p *Processor) { p.reg = r }
}

// New builds a Processor. The machine settings are required: without them
// the default minimum print speed cannot be derived, and running anyway
// could emit feed rates below the machine's floor. Out-of-range job
// settings are clamped, never rejected.
func New(settings Settings, machine *config.MachineSettings, opts ...Option) (*Processor, error) {
	if machine == nil {
		return nil, errors.New(errors.ErrHostSettings, "machine settings unavailable")
	}

	if settings.MaxPerSec < 1 {
		settings.MaxPerSec = 1
	}
	minPrintSpeed := math.Max(FloorMinPrintSpeed,
		math.Max(settings.MinPrintSpeed, machine.MinPrintSpeedDefault()))

	p := &Processor{
		settings:       settings,
		minSegmentTime: 1 / float64(settings.MaxPerSec),
		minPrintSpeed:  minPrintSpeed,
		minFeedRate:    int(math.Floor(minPrintSpeed * 60)),
		logger:         log.GetLogger("ratelimit"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if settings.DebugLayers > 0 {
		p.logger.Debug("maxPerSec = %d/s", settings.MaxPerSec)
		p.logger.Debug("minSegmentTime = %gs", p.minSegmentTime)
		p.logger.Debug("minPrintSpeed = %gmm/s", p.minPrintSpeed)
		p.logger.Debug("minFeedRate = F%d", p.minFeedRate)
		p.logger.Debug("verbose = %v", settings.Verbose)
	}
	return p, nil
}

// MinSegmentTime returns the minimum allowed move duration in seconds.
func (p *Processor) MinSegmentTime() float64 { return p.minSegmentTime }

// MinFeedRate returns the floor for injected feed rates in mm/min.
func (p *Processor) MinFeedRate() int { return p.minFeedRate }

// MinPrintSpeed returns the effective floor print speed in mm/s.
func (p *Processor) MinPrintSpeed() float64 { return p.minPrintSpeed }

// Execute runs the pass over the ordered layer blocks and returns a new
// slice of equal length. Layers and the lines within them are processed
// strictly in order; motion state carries across layer boundaries. When
// the pass is disabled the input content is returned unchanged.
func (p *Processor) Execute(layers []string) []string {
	out := make([]string, len(layers))
	copy(out, layers)
	if !p.settings.Enabled {
		p.logger.Info("disabled - no action taken")
		return out
	}

	st := &motionState{}
	debug := p.settings.DebugLayers
	for layerNo := range out {
		layer := out[layerNo]
		if layerNo == 1 {
			// Slicers place post-processing headers after the preamble.
			layer = p.headerComment() + "\n" + layer
		}

		lines := strings.Split(layer, "\n")
		for lineNo, line := range lines {
			newLine, rewritten := p.processLine(line, st, debug > 0, layerNo, lineNo)
			if !rewritten {
				continue
			}
			if debug > 0 {
				p.logger.Debug("layer %d line %d: new line: %s", layerNo, lineNo, newLine)
			}
			if p.settings.Verbose {
				lines[lineNo] = "; " + line + "\n" + newLine
			} else {
				lines[lineNo] = newLine
			}
		}
		out[layerNo] = strings.Join(lines, "\n")

		if debug > 0 {
			debug--
			if debug == 0 {
				p.logger.Debug("debug tracing ended after layer %d", layerNo)
			}
		}
	}

	if st.extraTime > 0 && len(out) > 0 {
		out[len(out)-1] = p.summaryComment(st.extraTime) + "\n" + out[len(out)-1]
	}

	p.gauge("gcodepersec_extra_time_seconds", "Extra print time added by feed rate overrides", st.extraTime)
	p.logger.Info("pass complete: extra time %.6fs", st.extraTime)
	return out
}

// processLine handles one line and reports whether it was rewritten.
func (p *Processor) processLine(line string, st *motionState, trace bool, layerNo, lineNo int) (string, bool) {
	p.count("gcodepersec_lines_total", "Lines scanned")

	switch gcode.Classify(line) {
	case gcode.Move:
		return p.processMove(line, st, trace, layerNo, lineNo)
	case gcode.TimeElapsed:
		sec, ok := gcode.TimeElapsedSeconds(line)
		if !ok {
			// Malformed annotation value; pass the line through.
			return "", false
		}
		return gcode.FormatTimeElapsed(round6(sec + st.extraTime)), true
	}
	return "", false
}

// processMove applies the rate-limiting decision table to a G0/G1 line.
func (p *Processor) processMove(line string, st *motionState, trace bool, layerNo, lineNo int) (string, bool) {
	p.count("gcodepersec_moves_total", "G0/G1 moves seen")

	if f, ok := gcode.Value(line, 'F'); ok {
		st.feedRate = int(f)
		st.hasFeedRate = true
		if trace {
			p.logger.Debug("layer %d line %d: saving feedrate F%d", layerNo, lineNo, st.feedRate)
		}
	}

	x, hasX := gcode.Value(line, 'X')
	y, hasY := gcode.Value(line, 'Y')

	newLine := ""
	rewritten := false

	// Limiting needs this move's endpoint, the previous endpoint and a
	// known feed rate; a first positioned move or a move without
	// coordinates only updates state.
	if hasX && hasY && st.hasX && st.hasY && st.hasFeedRate && st.feedRate > 0 {
		dx := x - st.lastX
		dy := y - st.lastY
		distance := math.Sqrt(dx*dx + dy*dy)
		moveTime := distance / float64(st.feedRate) * 60.0

		if trace {
			cmp := ">="
			if moveTime < p.minSegmentTime {
				cmp = "<"
			}
			p.logger.Debug("layer %d line %d: distance %.4fmm time %.6fs %s minimum", layerNo, lineNo, distance, moveTime, cmp)
		}

		switch {
		case distance > 0 && moveTime < p.minSegmentTime:
			newFeedRate := int(math.Floor(p.minSegmentTime / distance * 60.0))
			if newFeedRate < p.minFeedRate {
				newFeedRate = p.minFeedRate
			}
			if p.settings.Verbose || newFeedRate != st.adjustedFeedRate {
				newLine = gcode.SetValue(line, 'F', newFeedRate)
				rewritten = true
			}
			// extraTime is monotonic; a replacement rate above the
			// natural one contributes nothing rather than subtracting.
			if delta := distance/float64(newFeedRate)*60.0 - moveTime; delta > 0 {
				st.extraTime += delta
			}
			st.adjustedFeedRate = newFeedRate
			p.count("gcodepersec_overrides_total", "Feed rate overrides injected")

		case distance > 0 && st.adjustedFeedRate != 0:
			// Previous move was overridden; restore the natural rate.
			// Zero-length moves hold the override until the next
			// positioned move with real travel.
			newLine = gcode.SetValue(line, 'F', st.feedRate)
			st.adjustedFeedRate = 0
			rewritten = true
			p.count("gcodepersec_restores_total", "Natural feed rate restores emitted")
		}
	}

	if hasX {
		st.lastX, st.hasX = x, true
	}
	if hasY {
		st.lastY, st.hasY = y, true
	}
	return newLine, rewritten
}

// headerComment describes the pass parameters for the output file.
func (p *Processor) headerComment() string {
	return fmt.Sprintf(";Postprocessed by gCodePerSec: max gCode per sec = %d/s, min print speed = %smm/s",
		p.settings.MaxPerSec, strconv.FormatFloat(p.minPrintSpeed, 'f', -1, 64))
}

// summaryComment reports the total extra print time, truncated to whole
// seconds and formatted h:mm:ss.
func (p *Processor) summaryComment(extraTime float64) string {
	return ";Postprocessed by gCodePerSec: Additional print time to avoid stuttering = " +
		formatHMS(extraTime) + "hms"
}

func formatHMS(seconds float64) string {
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}

// round6 rounds to 6 decimal digits, the precision slicers use for the
// time annotations.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func (p *Processor) count(name, help string) {
	if p.reg == nil {
		return
	}
	p.reg.Counter(name, help).Inc(nil)
}

func (p *Processor) gauge(name, help string, v float64) {
	if p.reg == nil {
		return
	}
	p.reg.Gauge(name, help).Set(nil, v)
}
