// Command funclens analyzes a real-valued expression of x from the command
// line and prints the domain, range, intercepts and optional point
// evaluation with their derivation steps.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"github.com/funclens/funclens"
	"github.com/funclens/funclens/analyze"
	"github.com/funclens/funclens/expr"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "funclens:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "funclens",
		Short:         "Analyze a single-variable real expression",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default funclens.yaml in the working directory)")
	root.PersistentFlags().String("variable", "x", "name of the free variable")
	root.PersistentFlags().Float64("scan-min", -20, "lower end of the numeric scan window")
	root.PersistentFlags().Float64("scan-max", 20, "upper end of the numeric scan window")
	root.PersistentFlags().Int("samples", 2048, "sample count for numeric fallbacks")
	root.PersistentFlags().Duration("timeout", 2*time.Second, "analysis deadline")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(newAnalyzeCmd(), newExamplesCmd())
	return root
}

func loadOptions(cmd *cobra.Command) (analyze.Options, error) {
	v := viper.New()
	v.SetEnvPrefix("funclens")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"variable", "scan-min", "scan-max", "samples", "timeout", "debug"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return analyze.Options{}, err
		}
	}
	if cfg, _ := cmd.Flags().GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
		if err := v.ReadInConfig(); err != nil {
			return analyze.Options{}, err
		}
	} else {
		v.SetConfigName("funclens")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return analyze.Options{}, err
			}
		}
	}

	opts := analyze.Options{
		Variable: v.GetString("variable"),
		ScanMin:  v.GetFloat64("scan-min"),
		ScanMax:  v.GetFloat64("scan-max"),
		Samples:  v.GetInt("samples"),
		Timeout:  v.GetDuration("timeout"),
	}
	if v.GetBool("debug") {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return analyze.Options{}, err
		}
		opts.Logger = logger
	}
	return opts, nil
}

func newAnalyzeCmd() *cobra.Command {
	var point string
	var showTree bool
	cmd := &cobra.Command{
		Use:   "analyze <expression>",
		Short: "Analyze an expression, e.g. 'funclens analyze \"(x + 1)/(x - 2)\" --point 1.5'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			res, err := funclens.AnalyzeWith(cmd.Context(), args[0], point, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, res.Render())
			if showTree {
				fmt.Fprintln(out)
				fmt.Fprint(out, renderTree(res.Expr))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&point, "point", "", "evaluate the function at this x (accepts constants like pi/4)")
	cmd.Flags().BoolVar(&showTree, "tree", false, "print the parsed expression tree")
	return cmd
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Run the canonical example gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ex := range funclens.Examples() {
				fmt.Fprintf(out, "=== %s: %s ===\n", ex.Name, ex.Note)
				res, err := funclens.AnalyzeWith(cmd.Context(), ex.Expr, ex.Point, opts)
				if err != nil {
					return err
				}
				fmt.Fprint(out, res.Render())
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

// renderTree draws the expression structure for --tree mode.
func renderTree(e expr.Expr) string {
	tree := treeprint.New()
	addNode(tree, e)
	return tree.String()
}

func addNode(t treeprint.Tree, e expr.Expr) {
	switch v := e.(type) {
	case *expr.Sum:
		b := t.AddBranch("+")
		for _, term := range v.Terms() {
			addNode(b, term)
		}
	case *expr.Product:
		b := t.AddBranch("*")
		for _, f := range v.Factors() {
			addNode(b, f)
		}
	case *expr.Power:
		b := t.AddBranch("^")
		addNode(b, v.Base())
		addNode(b, v.Exponent())
	case *expr.Call:
		addNode(t.AddBranch(string(v.Func())), v.Arg())
	default:
		t.AddNode(e.String())
	}
}
