package volcano

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/mkuiper/deplot/internal/detable"
)

// LabelMode selects which records receive gene labels.
type LabelMode uint8

const (
	// LabelNone draws no gene labels.
	LabelNone LabelMode = iota
	// LabelThreshold labels records beyond the label cutoffs.
	LabelThreshold
	// LabelEllipse labels records outside the ellipse spanned by the label
	// cutoffs in (fold-change, log10 p) space.
	LabelEllipse
)

var labelModeNames = []string{"none", "threshold", "ellipse"}

func (m LabelMode) String() string {
	if int(m) < len(labelModeNames) {
		return labelModeNames[m]
	}
	return fmt.Sprintf("LabelMode(%d)", m)
}

// ParseLabelMode resolves a label mode name. Exact names and unambiguous
// prefixes are accepted.
func ParseLabelMode(s string) (LabelMode, error) {
	i, err := matchChoice("label mode", s, labelModeNames)
	if err != nil {
		return LabelNone, err
	}
	return LabelMode(i), nil
}

// Direction restricts threshold labeling to one side of the fold-change
// cutoff.
type Direction uint8

const (
	// DirectionBoth labels records on either side of the cutoff.
	DirectionBoth Direction = iota
	// DirectionLower labels records with fold-change below the cutoff.
	DirectionLower
	// DirectionUpper labels records with fold-change above the cutoff.
	DirectionUpper
)

var directionNames = []string{"both", "lower", "upper"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// ParseDirection resolves a labeling direction name. Exact names and
// unambiguous prefixes are accepted.
func ParseDirection(s string) (Direction, error) {
	i, err := matchChoice("direction", s, directionNames)
	if err != nil {
		return DirectionBoth, err
	}
	return Direction(i), nil
}

// matchChoice resolves s against a closed set of names, accepting exact
// matches and unambiguous prefixes.
func matchChoice(kind, s string, names []string) (int, error) {
	if s == "" {
		return -1, &detable.ConfigError{Msg: fmt.Sprintf("empty %s", kind)}
	}
	match := -1
	for i, name := range names {
		if name == s {
			return i, nil
		}
		if strings.HasPrefix(name, s) {
			if match >= 0 {
				return -1, &detable.ConfigError{
					Msg: fmt.Sprintf("ambiguous %s %q: matches %s and %s", kind, s, names[match], name),
				}
			}
			match = i
		}
	}
	if match < 0 {
		return -1, &detable.ConfigError{
			Msg: fmt.Sprintf("unknown %s %q (choose from %s)", kind, s, strings.Join(names, ", ")),
		}
	}
	return match, nil
}

// AxisLimit selects how one plot axis is scaled. The zero value leaves the
// axis to the plot's own autoscaling.
type AxisLimit struct {
	kind     limitKind
	min, max float64
}

type limitKind uint8

const (
	limitDefault limitKind = iota
	limitAuto
	limitFixed
)

// AutoLimit derives the axis range from the data extremes, floored at the
// matching significance cutoff.
func AutoLimit() AxisLimit {
	return AxisLimit{kind: limitAuto}
}

// FixedLimit sets an explicit axis range.
func FixedLimit(min, max float64) AxisLimit {
	return AxisLimit{kind: limitFixed, min: min, max: max}
}

// IsAuto reports whether the range is derived from the data.
func (l AxisLimit) IsAuto() bool {
	return l.kind == limitAuto
}

// IsFixed reports whether an explicit range was given.
func (l AxisLimit) IsFixed() bool {
	return l.kind == limitFixed
}

// Bounds returns the explicit range. Only meaningful when IsFixed.
func (l AxisLimit) Bounds() (min, max float64) {
	return l.min, l.max
}

// Config controls a single volcano rendering.
type Config struct {
	// FilePrefix, when set, writes the plot to FilePrefix+".pdf". Otherwise
	// the PDF is streamed to Display. One of the two must be set.
	FilePrefix string
	Display    io.Writer

	// Width and Height are the canvas size in inches. Zero means 8 by 6.
	Width  float64
	Height float64

	// Title, XLabel and YLabel decorate the plot. Empty axis labels default
	// to the fold-change and adjusted p-value axis names.
	Title  string
	XLabel string
	YLabel string

	// PointColor colors the points; SigColor colors points passing the
	// cutoffs when ColorByThreshold is set. Nil selects the defaults.
	PointColor color.Color
	SigColor   color.Color

	// ColorByThreshold splits points into significant and non-significant
	// groups. Requires both cutoffs.
	ColorByThreshold bool

	// FoldChangeCutoff (log2 units) and PValueCutoff (adjusted p) position
	// the dotted reference lines and drive threshold coloring and automatic
	// axis ranges. Nil disables each.
	FoldChangeCutoff *float64
	PValueCutoff     *float64

	XLimit AxisLimit
	YLimit AxisLimit

	// LabelMode selects gene labeling; the cut fields are its parameters.
	// LabelXCut is in log2 fold-change units, LabelYCut in -log10 p units.
	LabelMode      LabelMode
	LabelXCut      float64
	LabelYCut      float64
	LabelDirection Direction
	RepelLabels    bool
	LabelSize      float64 // font size in points, zero means 8
}

// validate rejects contradictory configurations before any output exists.
func (c *Config) validate() error {
	if c.FilePrefix == "" && c.Display == nil {
		return &detable.ConfigError{Msg: "no output target: set a file prefix or a display writer"}
	}
	if c.Width < 0 || c.Height < 0 {
		return &detable.ConfigError{Msg: "canvas size must be positive"}
	}
	if c.LabelSize < 0 {
		return &detable.ConfigError{Msg: "label size must be positive"}
	}
	if c.ColorByThreshold && (c.FoldChangeCutoff == nil || c.PValueCutoff == nil) {
		return &detable.ConfigError{Msg: "coloring by threshold requires both a fold-change and a p-value cutoff"}
	}
	if c.PValueCutoff != nil && *c.PValueCutoff <= 0 {
		return &detable.ConfigError{Msg: "p-value cutoff must be positive"}
	}
	if int(c.LabelMode) >= len(labelModeNames) {
		return &detable.ConfigError{Msg: fmt.Sprintf("invalid label mode %d", c.LabelMode)}
	}
	if int(c.LabelDirection) >= len(directionNames) {
		return &detable.ConfigError{Msg: fmt.Sprintf("invalid label direction %d", c.LabelDirection)}
	}
	if c.LabelMode == LabelEllipse && (c.LabelXCut == 0 || c.LabelYCut == 0) {
		return &detable.ConfigError{Msg: "ellipse labeling requires non-zero x and y radii"}
	}
	return nil
}
