package window_test

import (
	"fmt"

	"github.com/ItzJonatan/Set-List-Pro/dsp/window"
)

func ExampleNew() {
	w, _ := window.New(window.Blackman, 4, true)
	fmt.Printf("%.2f %.2f %.2f\n", w[1], w[2], w[3])
	// Output:
	// 0.34 1.00 0.34
}
