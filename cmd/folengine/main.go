// Command folengine is a thin CLI wrapper over the reasoning core: prove a
// goal from premises, search for a finite model, or check a formula parses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/config"
	"folengine/internal/dispatch"
	"folengine/internal/logging"
	"folengine/internal/model"
)

var (
	verbose    bool
	workspace  string
	configPath string
	engineName string
	maxSeconds time.Duration

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "folengine",
	Short: "First-order logic reasoning engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if !cmd.Flags().Changed("engine") {
			engineName = cfg.Engine.Default
		}
		if !cmd.Flags().Changed("max-seconds") {
			maxSeconds = cfg.GetMaxDuration()
		}

		zcfg := zap.NewProductionConfig()
		if verbose || cfg.Logging.Level == "debug" {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

var proveCmd = &cobra.Command{
	Use:   "prove [premises...] -- goal",
	Short: "Prove a goal from a list of premise formulas",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		premiseStrs := args[:len(args)-1]
		goalStr := args[len(args)-1]

		premises := make([]*ast.Node, len(premiseStrs))
		for i, s := range premiseStrs {
			n, err := ast.Parse(s)
			if err != nil {
				return exitErr(1, fmt.Errorf("parsing premise %q: %w", s, err))
			}
			premises[i] = n
		}
		goal, err := ast.Parse(goalStr)
		if err != nil {
			return exitErr(1, fmt.Errorf("parsing goal %q: %w", goalStr, err))
		}

		d, err := dispatch.New()
		if err != nil {
			return exitErr(2, err)
		}
		defer d.Close()

		ctx, cancel := context.WithTimeout(context.Background(), maxSeconds)
		defer cancel()

		result := d.Prove(ctx, dispatch.Request{
			Premises: premises,
			Goal:     goal,
			Engine:   dispatch.EngineName(engineName),
			Options:  backend.Options{MaxSeconds: maxSeconds},
		})
		printJSON(result)
		if result.Result != backend.Proved {
			os.Exit(1)
		}
		return nil
	},
}

var findModelCmd = &cobra.Command{
	Use:   "find-model [premises...]",
	Short: "Search for a finite model of a list of premise formulas",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		premises := make([]*ast.Node, len(args))
		for i, s := range args {
			n, err := ast.Parse(s)
			if err != nil {
				return exitErr(1, fmt.Errorf("parsing premise %q: %w", s, err))
			}
			premises[i] = n
		}

		ctx, cancel := context.WithTimeout(context.Background(), maxSeconds)
		defer cancel()

		result := model.FindModel(ctx, premises, model.Options{MaxDomainSize: cfg.Engine.MaxDomainSize, Count: 1, MaxSeconds: maxSeconds})
		printJSON(result)
		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [formula]",
	Short: "Check whether a formula parses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := ast.Parse(args[0])
		if err != nil {
			printJSON(map[string]any{"valid": false, "error": err.Error()})
			os.Exit(1)
		}
		printJSON(map[string]any{"valid": true})
		return nil
	},
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(b))
}

func exitErr(code int, err error) error {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "folengine.yaml", "Path to a YAML config file (defaults are used if absent)")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "auto", "auto|prolog|sat|smt|asp")
	rootCmd.PersistentFlags().DurationVar(&maxSeconds, "max-seconds", 10*time.Second, "Wall-clock timeout per call")

	rootCmd.AddCommand(proveCmd, findModelCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
