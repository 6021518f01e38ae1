package ebmcore

import (
	"log"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// ReadNpy reads a 2-D float matrix from a .npy file, the same layout the
// dataset ingestion collaborator hands training columns in before they're
// binned and packed into a PackedInputView.
func ReadNpy(fileName string) *mat.Dense {
	f, err := os.Open(fileName)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { HandleError(f.Close()) }()

	r, err := npyio.NewReader(f)
	if err != nil {
		log.Fatal(err)
	}

	denseMat := &mat.Dense{}
	HandleError(r.Read(denseMat))
	return denseMat
}

// WriteNpy writes m to a .npy file, used to dump trained region grids or
// prediction columns for inspection outside the process.
func WriteNpy(fileName string, m *mat.Dense) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer func() { HandleError(f.Close()) }()
	return npyio.Write(f, m)
}

// ColumnToStates quantizes a raw float column into integer bin states for
// PackInput, bucketing into binCount equal-width bins over [lo, hi]. Bin
// edges and categorical mapping are otherwise an orchestrator concern; this
// is a convenience for the common equal-width case exercised by tests and
// the CLI.
func ColumnToStates(col *mat.VecDense, binCount int) []int {
	h := col.Len()
	states := make([]int, h)
	lo, hi := col.AtVec(0), col.AtVec(0)
	for i := 1; i < h; i++ {
		v := col.AtVec(i)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	width := hi - lo
	for i := 0; i < h; i++ {
		if width <= 0 {
			states[i] = 0
			continue
		}
		frac := (col.AtVec(i) - lo) / width
		s := int(frac * float64(binCount))
		if s >= binCount {
			s = binCount - 1
		}
		if s < 0 {
			s = 0
		}
		states[i] = s
	}
	return states
}
