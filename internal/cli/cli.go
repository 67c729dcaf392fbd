package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/apsimgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("apsimgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
apsimgo - edit and run APSIM Next Generation models.

Usage:
  apsimgo [options] [MODEL]
  apsimgo --workflow FILE_OR_DIR [options]

Arguments:
  MODEL
    Path to a .apsimx file or the name of a bundled example such as Maize.

Edit specs:
  --management "path=.Simulations.Simulation.Field.Sow,Population=8:path=..."
  --physical   "node_path=.Simulations.Simulation.Field.Soil.Physical,BD=[1.2,1.3]"

Options:
`)
		flagSet.PrintDefaults()
	}

	var workflows stringList
	modelFlag := flagSet.String("model", "", "Path to the model file or the name of a bundled example.")
	outFlag := flagSet.String("out", "", "Path of the edited working copy. Results are kept next to it.")
	managementFlag := flagSet.String("management", "", "Manager edits: ':'-separated specs of comma-separated key=value pairs with a required path key.")
	tableFlag := flagSet.String("table", "", "Comma-separated report tables to print. Default: all.")
	metFlag := flagSet.String("met_file", "", "Weather file (.met) to attach to every Weather node.")
	lonlatFlag := flagSet.String("lonlat", "", "Location as lon,lat for downloaded weather and soil.")
	webDataFlag := flagSet.String("get_web_data", "no", "Download web data: 'both', 's' (soil), 'w' (weather) or 'no'.")
	organicFlag := flagSet.String("organic", "", "Organic soil edits: node_path=...,Param=[v1,v2].")
	physicalFlag := flagSet.String("physical", "", "Physical soil edits: node_path=...,Param=[v1,v2].")
	chemicalFlag := flagSet.String("chemical", "", "Chemical soil edits: node_path=...,Param=[v1,v2].")
	saveFlag := flagSet.String("save", "", "Save the edited model to this path.")
	previewFlag := flagSet.Bool("preview", false, "Print the edited nodes as YAML and exit without running.")
	simulationsFlag := flagSet.String("simulations", "", "Comma-separated simulations to run. Default: all.")
	cleanFlag := flagSet.Bool("clean", false, "Remove the previous result store before running.")
	multithreadFlag := flagSet.Bool("multithread", false, "Run simulations with the engine's multi-threaded runner.")
	binPathFlag := flagSet.String("bin-path", "", "Engine bin directory for this run. Overrides detection.")
	flagSet.Var(&workflows, "workflow", "Workflow .hcl file or directory. Repeatable.")
	workersFlag := flagSet.Int("workers", 0, "Override the workflow's worker count. 0 keeps the file's value.")
	weatherSourceFlag := flagSet.String("weather-source", "", "Weather service: 'nasa_power' (default) or 'daymet'.")
	soilConfigFlag := flagSet.String("soil-config", "", "YAML file with soil conversion constants and depth curves.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	model := *modelFlag
	if model == "" && flagSet.NArg() > 0 {
		model = flagSet.Arg(0)
	}
	if model == "" && len(workflows) == 0 {
		slog.Debug("No model or workflow provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	cfg := app.Config{
		Model:           model,
		Out:             *outFlag,
		Tables:          splitList(*tableFlag),
		MetFile:         *metFlag,
		WebData:         strings.ToLower(*webDataFlag),
		WeatherSource:   *weatherSourceFlag,
		SoilConfig:      *soilConfigFlag,
		Save:            *saveFlag,
		Preview:         *previewFlag,
		Simulations:     splitList(*simulationsFlag),
		Clean:           *cleanFlag,
		MultiThreaded:   *multithreadFlag,
		BinPath:         *binPathFlag,
		WorkflowPaths:   workflows,
		Workers:         *workersFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
	}

	if *managementFlag != "" {
		edits, err := ParseManagement(*managementFlag)
		if err != nil {
			return nil, false, usageError("%v", err)
		}
		cfg.Edits = edits
	}
	for _, soil := range []struct{ kind, raw string }{
		{"Organic", *organicFlag},
		{"Physical", *physicalFlag},
		{"Chemical", *chemicalFlag},
	} {
		if soil.raw == "" {
			continue
		}
		edits, err := ParseSoil(soil.kind, soil.raw)
		if err != nil {
			return nil, false, usageError("%v", err)
		}
		cfg.SoilEdits = append(cfg.SoilEdits, edits...)
	}
	if *lonlatFlag != "" {
		lon, lat, err := ParseLonLat(*lonlatFlag)
		if err != nil {
			return nil, false, usageError("%v", err)
		}
		cfg.Lon, cfg.Lat, cfg.HasLonLat = lon, lat, true
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "model", config.Model, "workflows", config.WorkflowPaths)
	return config, false, nil
}
