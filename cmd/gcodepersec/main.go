// gcodepersec post-processes sliced G-code so that no linear move
// executes faster than a configured maximum command rate. Moves that
// would complete too quickly get their feed rate lowered, and the
// slicer's ;TIME_ELAPSED: annotations are updated with the extra print
// time this adds.
//
// Usage:
//
//	gcodepersec -config ~/printer.cfg [options] input.gcode
//
// Options:
//
//	-config string    Printer configuration file (required)
//	-settings string  Per-job settings YAML file
//	-o string         Output file (default "-" for stdout)
//	-maxpersec int    Maximum G-code commands per second (default 50)
//	-minspeed float   Minimum print speed in mm/s (0 = derive from config)
//	-verbose          Keep rewritten lines as comments in the output
//	-debug int        Number of leading layers to trace
//	-logfile string   Log file path (default: stderr)
//	-metrics          Print pass metrics to stderr when done
//
// Examples:
//
//	# Rewrite a job in place
//	gcodepersec -config ~/printer.cfg -o part.gcode part.gcode
//
//	# Cap at 30 commands per second, keep originals as comments
//	gcodepersec -config ~/printer.cfg -maxpersec 30 -verbose part.gcode
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/config"
	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/gcode"
	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/log"
	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/metrics"
	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/ratelimit"
)

func main() {
	configFile := flag.String("config", "", "Printer configuration file (required)")
	settingsFile := flag.String("settings", "", "Per-job settings YAML file")
	output := flag.String("o", "-", "Output file (\"-\" for stdout)")
	maxPerSec := flag.Int("maxpersec", 0, "Maximum G-code commands per second (0 = from settings)")
	minSpeed := flag.Float64("minspeed", 0, "Minimum print speed in mm/s (0 = derive from config)")
	verbose := flag.Bool("verbose", false, "Keep rewritten lines as comments in the output")
	debug := flag.Int("debug", 0, "Number of leading layers to trace")
	logFile := flag.String("logfile", "", "Log file path (default: stderr)")
	dumpMetrics := flag.Bool("metrics", false, "Print pass metrics to stderr when done")

	flag.Parse()

	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -config is required\n")
		flag.Usage()
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one input G-code file is required\n")
		flag.Usage()
		os.Exit(1)
	}
	input := flag.Arg(0)

	if *logFile != "" {
		logger, writer, err := log.NewFileLogger("gcodepersec", log.RotationConfig{Filename: *logFile})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer writer.Close()
		log.SetDefaultLogger(logger)
	}
	logger := log.GetLogger("gcodepersec")
	if *debug > 0 {
		logger.SetLevel(log.DEBUG)
	}

	settings := ratelimit.DefaultSettings()
	if *settingsFile != "" {
		var err error
		if settings, err = ratelimit.LoadSettings(*settingsFile); err != nil {
			logger.Error("reading settings %s: %v", *settingsFile, err)
			os.Exit(1)
		}
	}
	if *maxPerSec > 0 {
		settings.MaxPerSec = *maxPerSec
	}
	if *minSpeed > 0 {
		settings.MinPrintSpeed = *minSpeed
	}
	if *verbose {
		settings.Verbose = true
	}
	if *debug > 0 {
		settings.DebugLayers = *debug
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("parsing config %s: %v", *configFile, err)
		os.Exit(1)
	}
	machine, err := config.LoadMachine(cfg)
	if err != nil {
		logger.Error("machine settings: %v", err)
		os.Exit(1)
	}

	reg := metrics.NewRegistry()
	proc, err := ratelimit.New(settings, machine,
		ratelimit.WithLogger(logger.WithPrefix("ratelimit")),
		ratelimit.WithMetrics(reg))
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	doc, err := os.ReadFile(input)
	if err != nil {
		logger.Error("reading %s: %v", input, err)
		os.Exit(1)
	}

	layers := gcode.SplitLayers(string(doc))
	logger.Info("%s: %d layers, max %d commands/s, min speed %gmm/s",
		input, len(layers), settings.MaxPerSec, proc.MinPrintSpeed())

	result := gcode.JoinLayers(proc.Execute(layers))

	if *output == "-" {
		if _, err := os.Stdout.WriteString(result); err != nil {
			logger.Error("writing stdout: %v", err)
			os.Exit(1)
		}
	} else if err := os.WriteFile(*output, []byte(result), 0644); err != nil {
		logger.Error("writing %s: %v", *output, err)
		os.Exit(1)
	}

	if *dumpMetrics {
		fmt.Fprint(os.Stderr, reg.Gather())
	}
}
