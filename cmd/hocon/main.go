package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dhamidi/hocon"
	"github.com/dhamidi/hocon/format"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hocon",
		Short: "A HOCON config loader and query tool",
	}

	var lenientFlag bool
	var noEnvFlag bool
	var noURLIncludesFlag bool
	var maxIncludeDepthFlag int
	catCmd := &cobra.Command{
		Use:   "cat <source>...",
		Short: "Load one or more HOCON/properties sources and print the resolved tree as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(args, catOptions{
				lenient:         lenientFlag,
				noEnv:           noEnvFlag,
				noURLIncludes:   noURLIncludesFlag,
				maxIncludeDepth: maxIncludeDepthFlag,
			})
		},
	}
	catCmd.Flags().BoolVar(&lenientFlag, "lenient", false, "embed BadValue instead of failing on parse/resolve errors")
	catCmd.Flags().BoolVar(&noEnvFlag, "no-env", false, "do not fall back to the process environment for substitutions")
	catCmd.Flags().BoolVar(&noURLIncludesFlag, "no-url-includes", false, "disable include url(...) and http(s):// sources")
	catCmd.Flags().IntVar(&maxIncludeDepthFlag, "max-include-depth", 32, "maximum recursive include nesting")

	rootCmd.AddCommand(catCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type catOptions struct {
	lenient         bool
	noEnv           bool
	noURLIncludes   bool
	maxIncludeDepth int
}

func runCat(sources []string, opts catOptions) error {
	logger := logrus.StandardLogger()

	loader := hocon.New(
		hocon.WithStrict(!opts.lenient),
		hocon.WithSystemEnvironment(!opts.noEnv),
		hocon.WithNoURLIncludes(opts.noURLIncludes),
		hocon.WithMaxIncludeDepth(opts.maxIncludeDepth),
		hocon.WithLogger(logger),
	)

	for _, src := range sources {
		switch {
		case src == "-":
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			loader = loader.LoadStr(string(data), "<stdin>")
		case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
			loader = loader.LoadURL(src)
		default:
			loader = loader.LoadFile(src)
		}
	}

	root, err := loader.Hocon()
	if err != nil {
		logger.WithError(err).Error("load failed")
		return err
	}

	if err := format.NewJSONEncoder(os.Stdout).Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Println()
	return nil
}
