package solver

import (
	"errors"
	"fmt"
	"math"
)

// Func is a scalar function of one variable.
type Func func(x float64) float64

var (
	ErrNoBracket      = errors.New("no sign change found")
	ErrNotConverged   = errors.New("failed to converge")
	ErrInvalidBracket = errors.New("invalid bracket")
)

// Options controls the root search. Zero values fall back to defaults.
type Options struct {
	Tolerance float64 // |f(x)| must drop below this
	MaxIter   int
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-8
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 200
	}
	return o
}

// Root is the outcome of a search. On failure it still holds the last
// iterate and its residual.
type Root struct {
	X          float64
	Residual   float64
	Iterations int
}

// Bracket looks for a sign change of f inside the open interval (lo, hi).
// It walks geometrically away from guess in both directions first and falls
// back to a uniform scan of n cells.
func Bracket(f Func, lo, hi, guess float64, n int) (a, b float64, err error) {
	if !(lo < hi) {
		return 0, 0, fmt.Errorf("%w: [%g, %g]", ErrInvalidBracket, lo, hi)
	}
	if n < 2 {
		n = 2
	}
	inside := func(x float64) bool { return x > lo && x < hi }
	if !inside(guess) {
		guess = lo + (hi-lo)/2
	}

	fg := f(guess)
	if fg == 0 {
		return guess, guess, nil
	}
	prevUp, fUp := guess, fg
	prevDown, fDown := guess, fg
	for step := (hi - lo) / float64(4*n); ; step *= 2 {
		moved := false
		if up := guess + step; inside(up) {
			moved = true
			if fu := f(up); finite(fu) && finite(fUp) && !sameSign(fu, fUp) {
				return prevUp, up, nil
			} else if finite(fu) {
				prevUp, fUp = up, fu
			}
		}
		if down := guess - step; inside(down) {
			moved = true
			if fd := f(down); finite(fd) && finite(fDown) && !sameSign(fd, fDown) {
				return down, prevDown, nil
			} else if finite(fd) {
				prevDown, fDown = down, fd
			}
		}
		if !moved {
			break
		}
	}

	// uniform scan, endpoints excluded
	h := (hi - lo) / float64(n)
	xPrev := lo + h/2
	fPrev := f(xPrev)
	for i := 1; i < n; i++ {
		x := xPrev + h
		fx := f(x)
		if finite(fPrev) && finite(fx) && !sameSign(fPrev, fx) {
			return xPrev, x, nil
		}
		xPrev, fPrev = x, fx
	}
	return 0, 0, fmt.Errorf("%w in (%g, %g)", ErrNoBracket, lo, hi)
}

// Brent finds a root of f in [a, b] where f(a) and f(b) differ in sign.
// The result is accepted once |f(x)| < opts.Tolerance.
func Brent(f Func, a, b float64, opts Options) (Root, error) {
	opts = opts.withDefaults()
	fa, fb := f(a), f(b)
	if !finite(fa) || !finite(fb) {
		return Root{}, fmt.Errorf("%w: non-finite value at endpoint", ErrInvalidBracket)
	}
	if math.Abs(fa) < opts.Tolerance {
		return Root{X: a, Residual: fa}, nil
	}
	if math.Abs(fb) < opts.Tolerance {
		return Root{X: b, Residual: fb}, nil
	}
	if sameSign(fa, fb) {
		return Root{}, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrInvalidBracket, a, fa, b, fb)
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}
	c, fc := a, fa
	d := b - a
	mflag := true

	for iter := 1; iter <= opts.MaxIter; iter++ {
		if adjacent(a, b) {
			return Root{X: b, Residual: fb, Iterations: iter - 1},
				fmt.Errorf("%w: bracket collapsed at %g with residual %g", ErrNotConverged, b, fb)
		}
		var s float64
		if fa != fc && fb != fc {
			// inverse quadratic interpolation
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			s = b - fb*(b-a)/(fb-fa)
		}

		lo, hi := (3*a+b)/4, b
		if lo > hi {
			lo, hi = hi, lo
		}
		bisect := s <= lo || s >= hi ||
			(mflag && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!mflag && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(mflag && math.Abs(b-c) < tiny(b)) ||
			(!mflag && math.Abs(c-d) < tiny(b))
		if bisect {
			s = (a + b) / 2
		}
		mflag = bisect

		fs := f(s)
		if !finite(fs) {
			return Root{X: s, Residual: fs, Iterations: iter}, fmt.Errorf("%w: non-finite value at %g", ErrNotConverged, s)
		}
		d, c, fc = c, b, fb
		if sameSign(fa, fs) {
			a, fa = s, fs
		} else {
			b, fb = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}

		if math.Abs(fb) < opts.Tolerance {
			return Root{X: b, Residual: fb, Iterations: iter}, nil
		}
	}
	return Root{X: b, Residual: fb, Iterations: opts.MaxIter},
		fmt.Errorf("%w in %d iterations", ErrNotConverged, opts.MaxIter)
}

func tiny(x float64) float64 {
	return 2 * epsilon * math.Abs(x)
}

const epsilon = 2.220446049250313e-16

// adjacent reports whether no float64 lies strictly between a and b.
func adjacent(a, b float64) bool {
	return a == b || math.Nextafter(a, b) == b
}

// sameSign is false when either value is zero, so an exact root counts as
// a sign change.
func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
