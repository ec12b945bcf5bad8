package main

// This is an example of using PlotScript as a library in a Go application

import (
	"errors"
	"fmt"
	"time"

	"github.com/phroun/plotscript"
)

func main() {
	// Create a PlotScript interpreter with custom config
	ps := plotscript.New(&plotscript.Config{
		Timeout:          5 * time.Second,
		CacheSize:        32,   // cache results of repeated runs
		ShowErrorContext: true, // attach script lines to errors
		ContextLines:     2,
	})

	fmt.Println("=== PlotScript Example ===")
	fmt.Println()

	// Example 1: Simple script
	fmt.Println("Example 1: Simple script")
	shapes, err := ps.Interpret("Point 1 2\nCircle 0 0 5", "")
	if err != nil {
		fmt.Println("error:", err)
	}
	for _, s := range shapes {
		fmt.Printf("  %s %s at (%v, %v)\n", s.ID, s.Type, s.X, s.Y)
	}
	fmt.Println()

	// Example 2: Reading input data
	fmt.Println("Example 2: Reading input data")
	script := `Read n
rep i n:
  Read x y
  Point x y`
	shapes, err = ps.Interpret(script, "3  10 20  30 40  50 60")
	if err != nil {
		fmt.Println("error:", err)
	}
	fmt.Printf("  plotted %d points from the data stream\n", len(shapes))
	fmt.Println()

	// Example 3: Groups, colors and JSON output
	fmt.Println("Example 3: Groups, colors and JSON output")
	script = `group "axes":
  Line 0 0 1 0 #444444
  Line 0 0 0 1 #444444
Circle 0 0 3 "unit circle, almost"`
	shapes, err = ps.Interpret(script, "")
	if err != nil {
		fmt.Println("error:", err)
	}
	out, _ := plotscript.MarshalShapes(shapes, true)
	fmt.Println(string(out))
	fmt.Println()

	// Example 4: Error reporting with context
	fmt.Println("Example 4: Error reporting with context")
	_, err = ps.Interpret("Read x\nPont x x", "7")
	var serr *plotscript.ScriptError
	if errors.As(err, &serr) {
		fmt.Println(" ", serr)
		for _, line := range serr.Context {
			fmt.Println("   ", line)
		}
	}
	fmt.Println()

	// Example 5: Static checking without running
	fmt.Println("Example 5: Static checking")
	issues := plotscript.CheckScript("break\nrep i 3\nPoint 1")
	for _, issue := range issues {
		fmt.Println(" ", issue)
	}
	fmt.Println()

	// Example 6: Cache statistics
	fmt.Println("Example 6: Cache statistics")
	for i := 0; i < 3; i++ {
		ps.Interpret("Point 1 2", "")
	}
	hits, misses, size := ps.CacheStats()
	fmt.Printf("  cache: %d hits, %d misses, %d entries\n", hits, misses, size)
	fmt.Println()

	fmt.Println("=== Examples Complete ===")
}
