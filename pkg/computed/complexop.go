package computed

// ComplexOp is the real 2x2 operator formed by the products of the real and
// imaginary parts of two complex numbers. It is the element type of elliptic
// (non-circular) complex variances.
//
// The component order ReRe, ReIm, ImRe, ImIm is also the persisted order.
type ComplexOp struct {
	ReRe float64
	ReIm float64
	ImRe float64
	ImIm float64
}

// OuterProduct returns the operator of a and b: (re a * re b, re a * im b,
// im a * re b, im a * im b).
func OuterProduct(a, b complex128) ComplexOp {
	return ComplexOp{
		ReRe: real(a) * real(b),
		ReIm: real(a) * imag(b),
		ImRe: imag(a) * real(b),
		ImIm: imag(a) * imag(b),
	}
}

// Components returns the four components in persisted order.
func (o ComplexOp) Components() [4]float64 {
	return [4]float64{o.ReRe, o.ReIm, o.ImRe, o.ImIm}
}

// ComplexOpFromComponents is the inverse of Components.
func ComplexOpFromComponents(c [4]float64) ComplexOp {
	return ComplexOp{ReRe: c[0], ReIm: c[1], ImRe: c[2], ImIm: c[3]}
}

// Add returns o + p.
func (o ComplexOp) Add(p ComplexOp) ComplexOp {
	return ComplexOp{o.ReRe + p.ReRe, o.ReIm + p.ReIm, o.ImRe + p.ImRe, o.ImIm + p.ImIm}
}

// Scale returns o * f.
func (o ComplexOp) Scale(f float64) ComplexOp {
	return ComplexOp{o.ReRe * f, o.ReIm * f, o.ImRe * f, o.ImIm * f}
}

// Trace returns ReRe + ImIm, the circular variance of the operator.
func (o ComplexOp) Trace() float64 {
	return o.ReRe + o.ImIm
}
