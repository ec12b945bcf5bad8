package plotscript

import "fmt"

func ExampleInterpret() {
	shapes, _ := Interpret("rep i 3:\n  Point i i*i", "", 0)
	for _, s := range shapes {
		fmt.Printf("%s (%v, %v)\n", s.ID, s.X, s.Y)
	}
	// Output:
	// P0 (0, 0)
	// P1 (1, 1)
	// P2 (2, 4)
}

func ExampleInterpret_conditionals() {
	script := `Read n
if n % 2 == 0:
  Point n 0
elif n % 3 == 0:
  Point n 10
else:
  Point n 20`

	for _, data := range []string{"6", "9", "7"} {
		shapes, _ := Interpret(script, data, 0)
		fmt.Printf("(%v, %v)\n", shapes[0].X, shapes[0].Y)
	}
	// Output:
	// (6, 0)
	// (9, 10)
	// (7, 20)
}

func ExampleInterpreter_Interpret() {
	in := New(nil)
	script := `group "walls":
  rep i 4:
    Push i i*i
  Poly "staircase"`

	shapes, _ := in.Interpret(script, "")
	s := shapes[0]
	fmt.Println(s.ID, s.Label, s.GroupID, len(s.Points))
	// Output:
	// Pg0 staircase walls 4
}

func ExampleInterpret_scriptError() {
	_, err := Interpret("break", "", 0)
	fmt.Println(err)
	// Output:
	// SyntaxError: 'break' outside of a loop (line 1)
}

func ExampleCheckScript() {
	issues := CheckScript("rep i 2:\n  Point i i\nbreak")
	for _, issue := range issues {
		fmt.Println(issue)
	}
	// Output:
	// line 3: SyntaxError: 'break' outside of a loop
}
