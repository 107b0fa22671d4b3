package phash

import "math"

// dctMatrix returns the n×n orthonormal cosine basis matrix: row 0 is scaled
// by 1/sqrt(n), all other rows by sqrt(2/n) and evaluated as
// cos(π/(2n) · row · (2·col+1))
func dctMatrix(n int) [][]float64 {
	scale := math.Sqrt(2.0 / float64(n))
	dc := 1.0 / math.Sqrt(float64(n))

	m := make([][]float64, n)
	for y := 0; y < n; y++ {
		row := make([]float64, n)
		for x := 0; x < n; x++ {
			if y == 0 {
				row[x] = dc
			} else {
				row[x] = scale * math.Cos(math.Pi/(2.0*float64(n))*float64(y)*float64(2*x+1))
			}
		}
		m[y] = row
	}
	return m
}

// transpose returns the transpose of a square matrix
func transpose(m [][]float64) [][]float64 {
	n := len(m)
	t := make([][]float64, n)
	for y := 0; y < n; y++ {
		row := make([]float64, n)
		for x := 0; x < n; x++ {
			row[x] = m[x][y]
		}
		t[y] = row
	}
	return t
}

// multiply returns the product of two square matrices of the same size
func multiply(a, b [][]float64) [][]float64 {
	n := len(a)
	out := make([][]float64, n)
	for y := 0; y < n; y++ {
		row := make([]float64, n)
		for x := 0; x < n; x++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += a[y][k] * b[k][x]
			}
			row[x] = sum
		}
		out[y] = row
	}
	return out
}
