// Command keyshape decodes shape specs and validates, casts or exports
// keyword values against a registry file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/keyshape"
	"github.com/reoring/keyshape/i18n"
	js "github.com/reoring/keyshape/jsonschema"
	"github.com/reoring/keyshape/registry"
	"github.com/reoring/keyshape/source"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// cli carries the global flags and the state built from them.
type cli struct {
	registryPath string
	lang         string
	verbose      bool
	yamlInput    bool
	strict       bool
	explicit     string

	logger *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "keyshape",
		Short:         "Validate and cast keyword values against a shape registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			i18n.SetLanguage(c.lang)
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
			if c.verbose {
				config = zap.NewDevelopmentConfig()
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	pf := root.PersistentFlags()
	pf.StringVar(&c.registryPath, "registry", "", "registry file (.yaml, .yml, .json or .hcl)")
	pf.StringVar(&c.lang, "lang", "en", "message language (en, ja)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	decode := &cobra.Command{
		Use:   "decode-shape SHAPE",
		Short: "Print the dimension bounds of a shape spec",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runDecodeShape,
	}
	check := &cobra.Command{
		Use:   "check-shape SHAPE VALUE",
		Short: "Check the structural shape of a value",
		Args:  cobra.ExactArgs(2),
		RunE:  c.runCheckShape,
	}
	validate := &cobra.Command{
		Use:   "validate KEY VALUE",
		Short: "Validate a value against a registered keyword or entity type",
		Args:  cobra.ExactArgs(2),
		RunE:  c.runValidate,
	}
	validate.Flags().StringVar(&c.explicit, "shape", "", "validate VALUE as a collection laid out by this shape, e.g. (:)")
	validate.Flags().BoolVar(&c.strict, "strict", false, "reject unknown keywords")
	cast := &cobra.Command{
		Use:   "cast KEY VALUE",
		Short: "Cast a value to the dtype of a registered keyword",
		Args:  cobra.ExactArgs(2),
		RunE:  c.runCast,
	}
	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the registry as JSON Schema",
		Args:  cobra.NoArgs,
		RunE:  c.runSchema,
	}
	for _, cmd := range []*cobra.Command{check, validate, cast} {
		cmd.Flags().BoolVar(&c.yamlInput, "yaml", false, "decode VALUE as YAML instead of JSON")
	}
	root.AddCommand(decode, check, validate, cast, schema)
	return root
}

type boundJSON struct {
	Min *int64 `json:"min"`
	Max *int64 `json:"max"`
}

func (c *cli) runDecodeShape(cmd *cobra.Command, args []string) error {
	s, err := keyshape.DecodeShape(args[0])
	if err != nil {
		return err
	}
	out := make([]boundJSON, len(s))
	for i, b := range s {
		if b.Min != keyshape.NegInf {
			out[i].Min = &s[i].Min
		}
		if b.Max != keyshape.PosInf {
			out[i].Max = &s[i].Max
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), s.String())
	return writeJSON(cmd.OutOrStdout(), out)
}

func (c *cli) runCheckShape(cmd *cobra.Command, args []string) error {
	v, err := c.decodeValue(args[1])
	if err != nil {
		return err
	}
	if err := keyshape.CheckShapeText(v, args[0]); err != nil {
		return err
	}
	dims, _ := keyshape.StructuralShape(v)
	fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", keyshape.FormatDims(dims))
	return nil
}

func (c *cli) runValidate(cmd *cobra.Command, args []string) error {
	reg, err := c.loadRegistry()
	if err != nil {
		return err
	}
	v, err := c.decodeValue(args[1])
	if err != nil {
		return err
	}
	val := keyshape.NewValidator(reg, keyshape.WithLogger(c.logger), keyshape.WithStrictUnknown(c.strict))
	var res keyshape.Result
	if c.explicit != "" {
		s, err := keyshape.DecodeShape(c.explicit)
		if err != nil {
			return err
		}
		res, err = val.ValidateComposite(v, s, args[0])
		if err != nil {
			return err
		}
	} else if res, err = val.ValidateKeyword(v, args[0]); err != nil {
		return err
	}
	printAdvisories(cmd.ErrOrStderr(), res)
	fmt.Fprintln(cmd.OutOrStdout(), res.Outcome)
	return nil
}

func (c *cli) runCast(cmd *cobra.Command, args []string) error {
	reg, err := c.loadRegistry()
	if err != nil {
		return err
	}
	v, err := c.decodeValue(args[1])
	if err != nil {
		return err
	}
	out, err := keyshape.NewCaster(reg, keyshape.WithLogger(c.logger)).Cast(v, args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func (c *cli) runSchema(cmd *cobra.Command, args []string) error {
	reg, err := c.loadRegistry()
	if err != nil {
		return err
	}
	s, err := js.FromRegistry(reg)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), s)
}

func (c *cli) loadRegistry() (*keyshape.Registry, error) {
	if c.registryPath == "" {
		return nil, errors.New("--registry is required")
	}
	reg, err := registry.LoadFile(c.registryPath)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("registry loaded",
		zap.String("path", c.registryPath),
		zap.Int("keywords", len(reg.Keywords())),
		zap.Int("entities", len(reg.EntityTypes())))
	return reg, nil
}

func (c *cli) decodeValue(text string) (any, error) {
	if c.yamlInput {
		return source.YAML([]byte(text))
	}
	return source.JSON([]byte(text))
}

func printAdvisories(w io.Writer, res keyshape.Result) {
	for _, a := range res.Advisories {
		fmt.Fprintf(w, "%s: %s at %s: %s\n", a.Severity, a.Code, a.Path, a.Message)
	}
}

func writeJSON(w io.Writer, v any) error {
	b, err := j.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
