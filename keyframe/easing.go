package keyframe

import (
	"sort"

	"github.com/fogleman/ease"
)

// Linear is the easing applied when a keyframe does not name one.
const Linear = "linear"

// An EasingFunc reshapes a linear progress fraction in [0, 1].
type EasingFunc func(t float64) float64

// The editor's own curves. These formulas are matched bit for bit by saved
// projects, so keep the arithmetic exactly as written.
var builtin = map[string]EasingFunc{
	Linear: func(t float64) float64 { return t },
	"easeIn": func(t float64) float64 {
		return t * t
	},
	"easeOut": func(t float64) float64 {
		return t * (2 - t)
	},
	"easeInOut": func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	},
	"easeInCubic": func(t float64) float64 {
		return t * t * t
	},
	"easeOutCubic": func(t float64) float64 {
		t--
		return t*t*t + 1
	},
	"easeInOutCubic": func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return (t-1)*(2*t-2)*(2*t-2) + 1
	},
}

// Extra curves for presets and imported projects.
var extended = map[string]EasingFunc{
	"easeInSine":     ease.InSine,
	"easeOutSine":    ease.OutSine,
	"easeInOutSine":  ease.InOutSine,
	"easeInQuart":    ease.InQuart,
	"easeOutQuart":   ease.OutQuart,
	"easeInOutQuart": ease.InOutQuart,
	"easeInExpo":     ease.InExpo,
	"easeOutExpo":    ease.OutExpo,
	"easeInCirc":     ease.InCirc,
	"easeOutCirc":    ease.OutCirc,
	"easeInBack":     ease.InBack,
	"easeOutBack":    ease.OutBack,
	"easeOutBounce":  ease.OutBounce,
	"easeOutElastic": ease.OutElastic,
}

// Ease looks up an easing function by name. An empty name is linear.
func Ease(name string) (EasingFunc, bool) {
	if name == "" {
		name = Linear
	}
	if fn, ok := builtin[name]; ok {
		return fn, true
	}
	fn, ok := extended[name]
	return fn, ok
}

// EasingNames lists every registered easing, sorted.
func EasingNames() []string {
	names := make([]string, 0, len(builtin)+len(extended))
	for name := range builtin {
		names = append(names, name)
	}
	for name := range extended {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
