package render

// rampStop is one breakpoint of the waterfall color ramp.
type rampStop struct {
	t       float64
	r, g, b uint8
}

// rampStops approximates the viridis palette with four linear segments:
// deep purple through blue and green up to yellow. Endpoints clamp.
var rampStops = [5]rampStop{
	{0.00, 68, 1, 84},
	{0.25, 59, 82, 139},
	{0.50, 33, 145, 140},
	{0.75, 94, 201, 98},
	{1.00, 253, 231, 37},
}

// RampToRGB maps a normalized magnitude t in [0,1] to an RGB triple via the
// piecewise-linear ramp. Values outside [0,1] are clamped.
func RampToRGB(t float64) (r, g, b uint8) {
	if t <= rampStops[0].t {
		s := rampStops[0]
		return s.r, s.g, s.b
	}
	last := rampStops[len(rampStops)-1]
	if t >= last.t {
		return last.r, last.g, last.b
	}

	for i := 1; i < len(rampStops); i++ {
		hi := rampStops[i]
		if t > hi.t {
			continue
		}
		lo := rampStops[i-1]
		f := (t - lo.t) / (hi.t - lo.t)
		r = lerpByte(lo.r, hi.r, f)
		g = lerpByte(lo.g, hi.g, f)
		b = lerpByte(lo.b, hi.b, f)
		return r, g, b
	}

	return last.r, last.g, last.b
}

// NormalizeDb maps a dB magnitude to [0,1] over the display range [-100,0].
func NormalizeDb(db float64) float64 {
	t := (db - MinDisplayDb) / (MaxDisplayDb - MinDisplayDb)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func lerpByte(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}
