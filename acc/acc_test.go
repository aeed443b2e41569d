package acc

import "testing"

func TestFlatPromotes(t *testing.T) {
	data := []float32{1.5, -2, 3.25}
	v := MakeFlat[float64](data)

	if v.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", v.Len())
	}
	for i, want := range []float64{1.5, -2, 3.25} {
		if got := v.At(i); got != want {
			t.Errorf("At(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestFlatNarrows(t *testing.T) {
	v := MakeFlat[float32]([]float64{0.5, 4})
	if got := v.At(1); got != float32(4) {
		t.Errorf("At(1) = %v, want 4", got)
	}
}

func TestRowMajorStrided(t *testing.T) {
	// 2x2 view with leading dimension 3.
	data := []float32{
		1, 2, 0,
		3, 4, 0,
	}
	v := MakeRowMajor[float64](data, 2, 2, 3)

	if v.Rows() != 2 || v.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", v.Rows(), v.Cols())
	}
	want := [2][2]float64{{1, 2}, {3, 4}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if got := v.At(i, j); got != want[i][j] {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}

func TestRowMajorStridePanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for stride < cols")
		}
	}()
	MakeRowMajor[float64]([]float32{1, 2}, 1, 2, 1)
}
