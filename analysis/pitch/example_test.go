package pitch_test

import (
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/analysis/pitch"
)

func ExampleDetector_Detect() {
	const sr = 44100.0
	window := make([]float64, 2048)
	for i := range window {
		window[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sr)
	}

	d, err := pitch.NewDetector(sr)
	if err != nil {
		panic(err)
	}

	f := d.Detect(window)
	fmt.Println(math.Abs(f-440)/440 < 0.01)
	fmt.Println(d.Detect(make([]float64, 2048)) == pitch.Unvoiced)
	// Output:
	// true
	// true
}
