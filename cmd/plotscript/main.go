package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phroun/plotscript"
)

var version = "dev" // set via -ldflags at build time

// ANSI color codes for terminal output
const (
	colorYellow = "\x1b[93m" // Bright yellow foreground
	colorReset  = "\x1b[0m"  // Reset to default
)

// stderrSupportsColor checks if stderr is a terminal that supports color output
func stderrSupportsColor() bool {
	stderrInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	// ModeCharDevice indicates a terminal
	if (stderrInfo.Mode() & os.ModeCharDevice) == 0 {
		return false
	}

	// Respect NO_COLOR environment variable (https://no-color.org/)
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	if term := os.Getenv("TERM"); term == "dumb" {
		return false
	}

	return true
}

// errorPrintf prints an error message to stderr, using color if supported
func errorPrintf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if stderrSupportsColor() {
		fmt.Fprintf(os.Stderr, "%s%s%s", colorYellow, message, colorReset)
	} else {
		fmt.Fprint(os.Stderr, message)
	}
}

func main() {
	versionFlag := flag.Bool("version", false, "Show version and exit")
	debugFlag := flag.Bool("debug", false, "Enable debug output")
	verboseFlag := flag.Bool("verbose", false, "Enable verbose output (alias for -debug)")
	flag.BoolVar(debugFlag, "d", false, "Enable debug output (short)")
	flag.BoolVar(verboseFlag, "v", false, "Enable verbose output (short, alias for -debug)")

	dataFlag := flag.String("data", "", "Input data file")
	textFlag := flag.String("text", "", "Inline input data (overrides -data)")
	timeoutFlag := flag.Int("timeout", 0, "Execution budget in milliseconds")
	flag.IntVar(timeoutFlag, "t", 0, "Execution budget in milliseconds (short)")
	outFlag := flag.String("o", "", "Write shape JSON to a file instead of stdout")
	compactFlag := flag.Bool("compact", false, "Emit compact JSON instead of indented")
	checkFlag := flag.Bool("check", false, "Statically check the script and exit")
	batchFlag := flag.String("batch", "", "Run a YAML batch manifest")
	configFlag := flag.String("config", "", "Settings file (default ~/.plotscript.yaml)")

	flag.Usage = showUsage
	flag.Parse()

	if *versionFlag {
		fmt.Println("plotscript " + version)
		os.Exit(0)
	}

	settings := loadSettingsFile(*configFlag)
	if *debugFlag || *verboseFlag {
		settings.Debug = true
	}
	if *timeoutFlag > 0 {
		settings.TimeoutMs = *timeoutFlag
	}
	ps := plotscript.New(settings.Config())

	if *batchFlag != "" {
		runBatch(ps, settings, *batchFlag, *outFlag, *compactFlag)
		return
	}

	args := flag.Args()

	// Check if stdin is redirected/piped
	stdinInfo, _ := os.Stdin.Stat()
	isStdinRedirected := (stdinInfo.Mode() & os.ModeCharDevice) == 0

	var scriptContent string
	scriptFromFile := false

	if len(args) > 0 {
		requestedFile := args[0]
		foundFile := findScriptFile(requestedFile)
		if foundFile == "" {
			errorPrintf("Error: Script file not found: %s\n", requestedFile)
			if !strings.Contains(filepath.Base(requestedFile), ".") {
				errorPrintf("Also tried: %s.plot\n", requestedFile)
			}
			os.Exit(1)
		}

		content, err := os.ReadFile(foundFile)
		if err != nil {
			errorPrintf("Error reading script file: %v\n", err)
			os.Exit(1)
		}
		scriptContent = string(content)
		scriptFromFile = true

	} else if isStdinRedirected {
		// No filename, but stdin is redirected - read the script from stdin
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			errorPrintf("Error reading from stdin: %v\n", err)
			os.Exit(1)
		}
		scriptContent = string(content)

	} else {
		// No filename and stdin is not redirected - run the REPL
		repl := plotscript.NewREPL(ps, plotscript.REPLConfig{ShowBanner: true})
		if err := repl.Start(); err != nil {
			errorPrintf("Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *checkFlag {
		issues := plotscript.CheckScript(scriptContent)
		hardErrors := 0
		for _, issue := range issues {
			fmt.Println(issue)
			if !issue.Warning {
				hardErrors++
			}
		}
		if hardErrors > 0 {
			os.Exit(1)
		}
		os.Exit(0)
	}

	data := resolveInputData(*textFlag, *dataFlag, scriptFromFile && isStdinRedirected)

	shapes, err := ps.Interpret(scriptContent, data)
	if err != nil {
		var serr *plotscript.ScriptError
		if errors.As(err, &serr) {
			ps.Logger().ReportScriptError(serr, strings.Split(scriptContent, "\n"))
		} else {
			errorPrintf("Error: %v\n", err)
		}
		os.Exit(1)
	}

	writeShapes(shapes, *outFlag, *compactFlag)
}

// resolveInputData picks the input data source: -text wins, then -data,
// then stdin when the script came from a file and stdin is piped.
func resolveInputData(text, dataFile string, stdinAvailable bool) string {
	if text != "" {
		return text
	}
	if dataFile != "" {
		content, err := os.ReadFile(dataFile)
		if err != nil {
			errorPrintf("Error reading data file: %v\n", err)
			os.Exit(1)
		}
		return string(content)
	}
	if stdinAvailable {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			errorPrintf("Error reading from stdin: %v\n", err)
			os.Exit(1)
		}
		return string(content)
	}
	return ""
}

func writeShapes(shapes []plotscript.Shape, outFile string, compact bool) {
	out, err := plotscript.MarshalShapes(shapes, !compact)
	if err != nil {
		errorPrintf("Error encoding shapes: %v\n", err)
		os.Exit(1)
	}
	if outFile != "" {
		if err := os.WriteFile(outFile, append(out, '\n'), 0o644); err != nil {
			errorPrintf("Error writing %s: %v\n", outFile, err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(string(out))
}

// batchOutput is the JSON rendering of one batch result.
type batchOutput struct {
	ID     string             `json:"id"`
	Name   string             `json:"name,omitempty"`
	Shapes []plotscript.Shape `json:"shapes"`
	Error  string             `json:"error,omitempty"`
}

func runBatch(ps *plotscript.Interpreter, settings *plotscript.Settings, manifest, outFile string, compact bool) {
	jobs, err := plotscript.LoadBatchManifest(manifest)
	if err != nil {
		errorPrintf("Error: %v\n", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		errorPrintf("Error: manifest %s contains no jobs\n", manifest)
		os.Exit(1)
	}

	workers := settings.Batch.Workers
	if workers < 1 {
		workers = 4
	}
	runner := plotscript.NewBatchRunner(ps, workers, settings.Batch.RatePerSec)
	results, err := runner.Run(context.Background(), jobs)
	if err != nil {
		errorPrintf("Error: batch aborted: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			errorPrintf("failed %s (%s): %v\n", res.JobID, res.Name, res.Err)
		} else {
			fmt.Printf("ok     %s (%s): %d shapes in %s\n", res.JobID, res.Name, len(res.Shapes), res.Elapsed.Round(time.Millisecond))
		}
	}

	if outFile != "" {
		outputs := make([]batchOutput, len(results))
		for i, res := range results {
			outputs[i] = batchOutput{ID: res.JobID, Name: res.Name, Shapes: res.Shapes}
			if outputs[i].Shapes == nil {
				outputs[i].Shapes = []plotscript.Shape{}
			}
			if res.Err != nil {
				outputs[i].Error = res.Err.Error()
			}
		}
		var encoded []byte
		var encErr error
		if compact {
			encoded, encErr = json.Marshal(outputs)
		} else {
			encoded, encErr = json.MarshalIndent(outputs, "", "  ")
		}
		if encErr != nil {
			errorPrintf("Error encoding results: %v\n", encErr)
			os.Exit(1)
		}
		if err := os.WriteFile(outFile, append(encoded, '\n'), 0o644); err != nil {
			errorPrintf("Error writing %s: %v\n", outFile, err)
			os.Exit(1)
		}
	}

	fmt.Printf("%d/%d jobs succeeded\n", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}

// loadSettingsFile loads the settings, creating a commented template on
// first run when using the default location. Failures fall back to
// defaults rather than aborting.
func loadSettingsFile(override string) *plotscript.Settings {
	path := override
	if path == "" {
		p, err := plotscript.DefaultSettingsPath()
		if err != nil {
			return &plotscript.Settings{}
		}
		path = p
		_ = plotscript.WriteDefaultSettings(path) // graceful failure
	}
	settings, err := plotscript.LoadSettings(path)
	if err != nil {
		errorPrintf("Warning: %v\n", err)
		return &plotscript.Settings{}
	}
	return settings
}

func findScriptFile(filename string) string {
	// First try the exact filename
	if _, err := os.Stat(filename); err == nil {
		return filename
	}
	// Then with the .plot extension, unless one was already given
	if !strings.Contains(filepath.Base(filename), ".") {
		withExt := filename + ".plot"
		if _, err := os.Stat(withExt); err == nil {
			return withExt
		}
	}
	return ""
}

func showUsage() {
	usage := `Usage: plotscript [options] [script.plot]
       plotscript [options] script.plot < data.txt
       echo "Point 1 2" | plotscript [options]

Interpret a format script against a stream of input data and emit the
resulting shapes as JSON. With no script and an interactive terminal,
starts a REPL.

Options:
  -version            Show version and exit
  -d, -debug          Enable debug output
  -v, -verbose        Enable verbose output (same as -debug)
  -t, -timeout MS     Execution budget in milliseconds (default: 3000)
  -data FILE          Read input data from FILE
  -text TEXT          Use TEXT as the input data (overrides -data)
  -o FILE             Write shape JSON to FILE instead of stdout
  -compact            Emit compact JSON instead of indented
  -check              Statically check the script, report issues and exit
  -batch FILE         Run all jobs in a YAML manifest
  -config FILE        Settings file (default: ~/.plotscript.yaml)

Arguments:
  script.plot         Script file to interpret (adds .plot extension if needed)

Examples:
  plotscript spiral.plot -text "40"
  plotscript parse.plot < measurements.txt
  plotscript -check parse.plot
  plotscript -batch jobs.yaml -o results.json
`
	fmt.Fprint(os.Stderr, usage)
}
