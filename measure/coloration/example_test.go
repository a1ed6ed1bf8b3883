package coloration_test

import (
	"fmt"

	"github.com/cwbudde/algo-console/dsp/console"
	"github.com/cwbudde/algo-console/measure/coloration"
)

func ExampleAnalyzer_Measure() {
	p, err := console.New(48000,
		console.WithParameter(console.ParamCoefficient, 0.5),
		console.WithParameter(console.ParamSkew, 0.25),
	)
	if err != nil {
		panic(err)
	}

	a, err := coloration.NewAnalyzer(coloration.Config{SampleRate: 48000, Frequency: 1000})
	if err != nil {
		panic(err)
	}

	res, err := a.Measure(p)
	if err != nil {
		panic(err)
	}

	fmt.Printf("tone: %.2f Hz\n", res.Frequency)
	fmt.Printf("odd and even harmonics: %v %v\n", res.OddHD > 0.001, res.EvenHD > 0.001)
	fmt.Printf("positive DC: %v\n", res.DC > 0)

	// Output:
	// tone: 1001.95 Hz
	// odd and even harmonics: true true
	// positive DC: true
}
