package preset

import "github.com/matt-g-everett/keyframer/keyframe"

func position(dx, dy float64) func(Target) keyframe.Value {
	return func(t Target) keyframe.Value { return keyframe.Point(t.X+dx, t.Y+dy) }
}

func scaled(k float64) func(Target) keyframe.Value {
	return func(t Target) keyframe.Value { return keyframe.Size(t.Width*k, t.Height*k) }
}

func size(w, h float64) func(Target) keyframe.Value {
	return func(Target) keyframe.Value { return keyframe.Size(w, h) }
}

func rotation(delta float64) func(Target) keyframe.Value {
	return func(t Target) keyframe.Value { return keyframe.Scalar(t.Rotation + delta) }
}

func opacity(v float64) func(Target) keyframe.Value {
	return func(Target) keyframe.Value { return keyframe.Scalar(v) }
}

func step(property string, offset float64, easing string, value func(Target) keyframe.Value) Step {
	return Step{Property: property, Offset: offset, Easing: easing, Value: value}
}

var catalog = []Preset{
	{ID: "slide", Name: "Slide", Description: "Move object from left to position", Category: Transform, Steps: []Step{
		step("position", 0, "easeOut", position(-150, 0)),
		step("position", 30, "easeOut", position(0, 0)),
	}},
	{ID: "slide-up", Name: "Slide Up", Description: "Move object up from below", Category: Transform, Steps: []Step{
		step("position", 0, "easeOut", position(0, 150)),
		step("position", 30, "easeOut", position(0, 0)),
	}},
	{ID: "slide-down", Name: "Slide Down", Description: "Move object down from above", Category: Transform, Steps: []Step{
		step("position", 0, "easeOut", position(0, -150)),
		step("position", 30, "easeOut", position(0, 0)),
	}},
	{ID: "grow", Name: "Grow", Description: "Scale up from nothing", Category: Transform, Steps: []Step{
		step("scale", 0, "easeOut", size(0, 0)),
		step("scale", 30, "easeOut", scaled(1)),
	}},
	{ID: "shrink", Name: "Shrink", Description: "Scale down to nothing", Category: Transform, Steps: []Step{
		step("scale", 0, "easeIn", scaled(1)),
		step("scale", 30, "easeIn", size(0, 0)),
	}},
	{ID: "spin", Name: "Spin", Description: "Rotate a full turn", Category: Transform, Steps: []Step{
		step("rotation", 0, "linear", rotation(0)),
		step("rotation", 40, "linear", rotation(360)),
	}},
	{ID: "twist", Name: "Twist", Description: "Twist and return", Category: Transform, Steps: []Step{
		step("rotation", 0, "easeInOut", rotation(0)),
		step("rotation", 15, "easeInOut", rotation(30)),
		step("rotation", 30, "easeInOut", rotation(0)),
	}},
	{ID: "zoom", Name: "Zoom", Description: "Zoom out and back", Category: Transform, Steps: []Step{
		step("scale", 0, "easeInOut", scaled(1)),
		step("scale", 15, "easeInOut", scaled(1.5)),
		step("scale", 30, "easeInOut", scaled(1)),
	}},
	{ID: "bounce", Name: "Bounce", Description: "Bounce in place", Category: Transform, Steps: []Step{
		step("position", 0, "easeOut", position(0, 0)),
		step("position", 10, "easeOut", position(0, -40)),
		step("position", 20, "easeIn", position(0, 0)),
		step("position", 27, "easeOut", position(0, -20)),
		step("position", 35, "easeIn", position(0, 0)),
	}},
	{ID: "shake", Name: "Shake", Description: "Shake side to side", Category: Transform, Steps: []Step{
		step("position", 0, "linear", position(0, 0)),
		step("position", 3, "linear", position(-10, 0)),
		step("position", 6, "linear", position(10, 0)),
		step("position", 9, "linear", position(-10, 0)),
		step("position", 12, "linear", position(10, 0)),
		step("position", 15, "linear", position(0, 0)),
	}},
	{ID: "wobble", Name: "Wobble", Description: "Wobble with decreasing swings", Category: Transform, Steps: []Step{
		step("rotation", 0, "easeInOut", rotation(0)),
		step("rotation", 5, "easeInOut", rotation(-15)),
		step("rotation", 10, "easeInOut", rotation(12)),
		step("rotation", 15, "easeInOut", rotation(-10)),
		step("rotation", 20, "easeInOut", rotation(8)),
		step("rotation", 25, "easeInOut", rotation(0)),
	}},
	{ID: "swing", Name: "Swing", Description: "Swing like a pendulum", Category: Transform, Steps: []Step{
		step("rotation", 0, "easeInOut", rotation(20)),
		step("rotation", 15, "easeInOut", rotation(-20)),
		step("rotation", 30, "easeInOut", rotation(20)),
	}},

	{ID: "fade-in", Name: "Fade In", Description: "Fade in from transparent", Category: Styles, Steps: []Step{
		step("opacity", 0, "easeOut", opacity(0)),
		step("opacity", 30, "easeOut", opacity(1)),
	}},
	{ID: "fade-out", Name: "Fade Out", Description: "Fade out to transparent", Category: Styles, Steps: []Step{
		step("opacity", 0, "easeIn", opacity(1)),
		step("opacity", 30, "easeIn", opacity(0)),
	}},
	{ID: "pulse", Name: "Pulse", Description: "Pulse size and opacity", Category: Styles, Steps: []Step{
		step("scale", 0, "easeInOut", scaled(1)),
		step("opacity", 0, "easeInOut", opacity(1)),
		step("scale", 15, "easeInOut", scaled(1.2)),
		step("opacity", 15, "easeInOut", opacity(0.7)),
		step("scale", 30, "easeInOut", scaled(1)),
		step("opacity", 30, "easeInOut", opacity(1)),
	}},
	{ID: "heartbeat", Name: "Heartbeat", Description: "Double beat", Category: Styles, Steps: []Step{
		step("scale", 0, "easeOut", scaled(1)),
		step("scale", 5, "easeInOut", scaled(1.3)),
		step("scale", 10, "easeInOut", scaled(1)),
		step("scale", 15, "easeInOut", scaled(1.3)),
		step("scale", 20, "easeIn", scaled(1)),
	}},
	{ID: "blink", Name: "Blink", Description: "Blink off and on", Category: Styles, Steps: []Step{
		step("opacity", 0, "linear", opacity(1)),
		step("opacity", 3, "linear", opacity(0)),
		step("opacity", 6, "linear", opacity(1)),
	}},
	{ID: "flicker", Name: "Flicker", Description: "Irregular flicker", Category: Styles, Steps: []Step{
		step("opacity", 0, "linear", opacity(1)),
		step("opacity", 5, "linear", opacity(0.3)),
		step("opacity", 10, "linear", opacity(1)),
		step("opacity", 15, "linear", opacity(0.5)),
		step("opacity", 20, "linear", opacity(1)),
	}},
	{ID: "glow", Name: "Glow", Description: "Breathe in size and opacity", Category: Styles, Steps: []Step{
		step("scale", 0, "easeInOut", scaled(0.9)),
		step("opacity", 0, "easeInOut", opacity(0.6)),
		step("scale", 20, "easeInOut", scaled(1.1)),
		step("opacity", 20, "easeInOut", opacity(1)),
		step("scale", 40, "easeInOut", scaled(0.9)),
		step("opacity", 40, "easeInOut", opacity(0.6)),
	}},

	{ID: "pop-in", Name: "Pop In", Description: "Pop in with bounce effect", Category: Reveal, Steps: []Step{
		step("scale", 0, "easeOut", size(0, 0)),
		step("opacity", 0, "easeOut", opacity(0)),
		step("scale", 15, "easeOut", scaled(1.2)),
		step("opacity", 15, "easeOut", opacity(1)),
		step("scale", 25, "easeInOut", scaled(1)),
	}},
	{ID: "slide-fade", Name: "Slide & Fade", Description: "Slide and fade in together", Category: Reveal, Steps: []Step{
		step("position", 0, "easeOut", position(-100, 0)),
		step("opacity", 0, "easeOut", opacity(0)),
		step("position", 30, "easeOut", position(0, 0)),
		step("opacity", 30, "easeOut", opacity(1)),
	}},
	{ID: "zoom-fade", Name: "Zoom & Fade", Description: "Zoom in while fading", Category: Reveal, Steps: []Step{
		step("scale", 0, "easeOut", scaled(0.5)),
		step("opacity", 0, "easeOut", opacity(0)),
		step("scale", 30, "easeOut", scaled(1)),
		step("opacity", 30, "easeOut", opacity(1)),
	}},
	{ID: "spin-in", Name: "Spin In", Description: "Spin while scaling in", Category: Reveal, Steps: []Step{
		step("scale", 0, "easeOut", size(0, 0)),
		step("rotation", 0, "easeOut", rotation(-180)),
		step("opacity", 0, "easeOut", opacity(0)),
		step("scale", 30, "easeOut", scaled(1)),
		step("rotation", 30, "easeOut", rotation(0)),
		step("opacity", 30, "easeOut", opacity(1)),
	}},
	{ID: "flip-in", Name: "Flip In", Description: "Flip rotate while appearing", Category: Reveal, Steps: []Step{
		step("rotation", 0, "easeOut", rotation(90)),
		step("opacity", 0, "easeOut", opacity(0)),
		step("rotation", 25, "easeOut", rotation(0)),
		step("opacity", 25, "easeOut", opacity(1)),
	}},
	{ID: "sweep", Name: "Sweep", Description: "Wipe in from side", Category: Reveal, Steps: []Step{
		step("position", 0, "easeOut", position(-50, 0)),
		step("scale", 0, "easeOut", func(t Target) keyframe.Value { return keyframe.Size(0, t.Height) }),
		step("position", 30, "easeOut", position(0, 0)),
		step("scale", 30, "easeOut", scaled(1)),
	}},
	{ID: "drop-in", Name: "Drop In", Description: "Drop from above with bounce", Category: Reveal, Steps: []Step{
		step("position", 0, "easeIn", position(0, -200)),
		step("opacity", 0, "linear", opacity(0)),
		step("position", 20, "easeOut", position(0, 10)),
		step("opacity", 10, "linear", opacity(1)),
		step("position", 30, "easeOut", position(0, 0)),
	}},
}
