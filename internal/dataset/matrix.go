package dataset

import "fmt"

// Matrix is a dense row-major float32 matrix: one feature vector per row.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// Row returns the i-th row as a slice into the matrix's backing array.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// Stack builds one matrix from equally sized vectors, in the order given.
func Stack(vectors [][]float32, cols int) (*Matrix, error) {
	m := &Matrix{Rows: len(vectors), Cols: cols, Data: make([]float32, 0, len(vectors)*cols)}
	for i, v := range vectors {
		if len(v) != cols {
			return nil, fmt.Errorf("vector %d has length %d, expected %d", i, len(v), cols)
		}
		m.Data = append(m.Data, v...)
	}
	return m, nil
}
