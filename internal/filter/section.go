package filter

// Section is a biquad with its own delay state, processed in Direct Form II
// Transposed. The zero value is silent; use NewSection.
type Section struct {
	Coefficients

	d0, d1 float64
}

// NewSection returns a Section with the given coefficients and cleared state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y
	return y
}

// ProcessBlock filters buf in place. State carries over between calls so a
// signal may be fed in arbitrary block sizes.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2, a1, a2 := s.B0, s.B1, s.B2, s.A1, s.A2
	d0, d1 := s.d0, s.d1
	for i, x := range buf {
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}
	s.d0, s.d1 = d0, d1
}

// Reset clears the delay state.
func (s *Section) Reset() {
	s.d0, s.d1 = 0, 0
}
