// Package d2d1 is the sibling Direct2D bindings package the generator
// redirects the D2D_/D2D1_ name family into.
package d2d1

type COLOR_F struct {
	R float32
	G float32
	B float32
	A float32
}

type POINT_2F struct {
	X float32
	Y float32
}

type RECT_F struct {
	Left   float32
	Top    float32
	Right  float32
	Bottom float32
}

type MATRIX_3X2_F struct {
	M11 float32
	M12 float32
	M21 float32
	M22 float32
	Dx  float32
	Dy  float32
}
