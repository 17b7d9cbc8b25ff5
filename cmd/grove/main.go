package main

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logs.Warn(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "grove",
		Short:         "Generate and inspect scattered vegetation worlds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logs.SetLevel(logs.ParseLevel(logLevel))
			logs.Encoder = json.Marshal
			errors.Encoder = json.Marshal
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logs.InfoLevel.String(), "Log level.")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(defaultsCmd())
	return rootCmd
}

// worldFlags are shared by the commands that build a world.
type worldFlags struct {
	seed     int64
	parallel bool
	debug    bool
}

func (f *worldFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Override the preset seed (0 keeps it)")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "Scatter categories concurrently")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Print [grove] debug lines to stderr")
}

func generateCmd() *cobra.Command {
	var wf worldFlags

	cmd := &cobra.Command{
		Use:   "generate [preset.yaml]",
		Short: "Scatter a world and print per-category placement statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.OutOrStdout(), presetArg(args), wf)
		},
	}
	wf.register(cmd)
	return cmd
}

func statsCmd() *cobra.Command {
	var (
		wf     worldFlags
		asJSON bool
		frames int
	)

	cmd := &cobra.Command{
		Use:   "stats [preset.yaml]",
		Short: "Scatter a world, render frames from an overview camera and report culling",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.OutOrStdout(), presetArg(args), wf, frames, asJSON)
		},
	}
	wf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().IntVar(&frames, "frames", 1, "Frames to render before reporting")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <preset.yaml>",
		Short: "Validate a world preset without generating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0])
		},
	}
}

func defaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default world preset as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDefaults(cmd.OutOrStdout())
		},
	}
}

func presetArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
