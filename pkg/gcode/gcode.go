// Package gcode provides line-level G-code classification and field access
// for post-processing passes. It deliberately parses only the tokens a
// post-processor needs: the command word, single-letter numeric arguments,
// and the annotation markers slicers embed as comments.
package gcode

import (
	"strconv"
	"strings"
)

// TimeElapsedMarker prefixes the per-layer elapsed time annotations that
// Cura embeds in sliced output.
const TimeElapsedMarker = ";TIME_ELAPSED:"

// LayerMarker prefixes the line Cura emits at the start of each layer.
const LayerMarker = ";LAYER:"

// Kind classifies a single G-code line.
type Kind int

const (
	// Other is any line a post-processor passes through unchanged.
	Other Kind = iota
	// Move is a G0/G1 linear move.
	Move
	// TimeElapsed is a ";TIME_ELAPSED:<seconds>" annotation.
	TimeElapsed
)

// Classify determines the kind of a raw G-code line. Move detection
// requires the exact-case "G0 " or "G1 " prefix; the time marker matches
// case-insensitively.
func Classify(line string) Kind {
	if strings.HasPrefix(line, "G0 ") || strings.HasPrefix(line, "G1 ") {
		return Move
	}
	if len(line) >= len(TimeElapsedMarker) &&
		strings.EqualFold(line[:len(TimeElapsedMarker)], TimeElapsedMarker) {
		return TimeElapsed
	}
	return Other
}

// Value extracts the numeric argument addressed by a single-letter key,
// e.g. Value("G1 F1200 X5", 'F') == 1200. Matches inside a trailing
// comment are ignored. The second return is false when the field is
// absent or its literal does not parse; callers treat both the same way,
// carrying the previous value forward.
func Value(line string, key byte) (float64, bool) {
	code := line
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}
	for i := 0; i < len(code); i++ {
		if code[i] != key {
			continue
		}
		if i > 0 && code[i-1] != ' ' && code[i-1] != '\t' {
			continue
		}
		lit := numericLiteral(code[i+1:])
		if lit == "" {
			continue
		}
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// SetValue returns line with the key's numeric argument replaced by the
// given integer value, leaving every other byte intact. When the key is
// absent the argument is inserted directly after the command word, the
// conventional slot for feed rates.
func SetValue(line string, key byte, value int) string {
	code := line
	comment := ""
	if i := strings.IndexByte(line, ';'); i >= 0 {
		code = line[:i]
		comment = line[i:]
	}
	for i := 0; i < len(code); i++ {
		if code[i] != key {
			continue
		}
		if i > 0 && code[i-1] != ' ' && code[i-1] != '\t' {
			continue
		}
		lit := numericLiteral(code[i+1:])
		if lit == "" {
			continue
		}
		return code[:i+1] + strconv.Itoa(value) + code[i+1+len(lit):] + comment
	}
	if sp := strings.IndexByte(code, ' '); sp >= 0 {
		return code[:sp] + " " + string(key) + strconv.Itoa(value) + code[sp:] + comment
	}
	return code + " " + string(key) + strconv.Itoa(value) + comment
}

// numericLiteral returns the leading numeric literal of s, or "" when s
// does not start with one. An optional sign, digits and at most one
// decimal point are accepted.
func numericLiteral(s string) string {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	start := i
	dot := false
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' {
			i++
			continue
		}
		if c == '.' && !dot {
			dot = true
			i++
			continue
		}
		break
	}
	if i == start {
		return ""
	}
	return s[:i]
}

// TimeElapsedSeconds parses the numeric value of a time annotation line.
func TimeElapsedSeconds(line string) (float64, bool) {
	if Classify(line) != TimeElapsed {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line[len(TimeElapsedMarker):]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatTimeElapsed reconstructs a time annotation line. The value is
// rendered with the minimal number of digits, matching how slicers emit
// it.
func FormatTimeElapsed(seconds float64) string {
	return TimeElapsedMarker + strconv.FormatFloat(seconds, 'f', -1, 64)
}

// SplitLayers splits a whole G-code document into layer blocks on
// ";LAYER:" boundaries. Everything before the first marker forms the
// first block (the slicer preamble). JoinLayers(SplitLayers(doc))
// reproduces doc byte for byte.
func SplitLayers(doc string) []string {
	lines := strings.Split(doc, "\n")
	var layers []string
	start := 0
	for i, line := range lines {
		if i > start && strings.HasPrefix(line, LayerMarker) {
			layers = append(layers, strings.Join(lines[start:i], "\n"))
			start = i
		}
	}
	layers = append(layers, strings.Join(lines[start:], "\n"))
	return layers
}

// JoinLayers reassembles layer blocks into a single document.
func JoinLayers(layers []string) string {
	return strings.Join(layers, "\n")
}
