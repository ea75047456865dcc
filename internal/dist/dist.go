// Package dist maps a distribution selector and a random draw to the
// fractions that drive property sizes and edge fan-out.
package dist

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Kind selects how a fraction in [0,1] is drawn.
type Kind string

const (
	None    Kind = "none"
	Uniform Kind = "uniform"
	Normal  Kind = "normal"
	Exp     Kind = "exp"
)

// ParseKind accepts the selector strings used on the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case None, Uniform, Normal, Exp:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown distribution %q", s)
}

// edgeScale turns a fraction into an out-degree.
const edgeScale = 10000

// Sampler draws fractions for one worker. Not safe for concurrent use;
// every worker owns its own instance and its own Source.
type Sampler struct {
	kind   Kind
	rnd    *rand.Rand
	normal distuv.Normal
	exp    distuv.Exponential
}

// NewSampler builds a sampler for kind on top of src. All draws, including
// the uniform ones, come from src, so a seeded Source gives reproducible
// sequences.
func NewSampler(kind Kind, src rand.Source) *Sampler {
	return &Sampler{
		kind:   kind,
		rnd:    rand.New(src),
		normal: distuv.Normal{Mu: 0.5, Sigma: 0.5, Src: src},
		exp:    distuv.Exponential{Rate: 0.5, Src: src},
	}
}

// Fraction returns the next draw. none is constantly 0, uniform is
// Uniform(0,1), normal is Normal(0.5,0.5) clamped into [0,1], exp is
// Exponential(0.5) unclamped.
func (s *Sampler) Fraction() float64 {
	switch s.kind {
	case Uniform:
		return s.rnd.Float64()
	case Normal:
		f := s.normal.Rand()
		if f > 1 {
			return 1
		}
		if f < 0 {
			return 0
		}
		return f
	case Exp:
		return s.exp.Rand()
	}
	return 0
}

// PropLen derives a property byte length in [min, max) subject to floor
// truncation.
func (s *Sampler) PropLen(min, max int) int {
	return min + int(s.Fraction()*float64(max-min))
}

// EdgeCount derives an out-degree. The exponential draw is squared before
// scaling, which fattens the tail so a minority of nodes get very high
// degree.
func (s *Sampler) EdgeCount() int {
	f := s.Fraction()
	if s.kind == Exp {
		f = f * f
	}
	return int(f * edgeScale)
}
