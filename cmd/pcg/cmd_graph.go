package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pcg/internal/codec"
	"pcg/internal/domain"
	"pcg/internal/kb"
	"pcg/internal/loader"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inputFormat string

// checkCmd parses a graph file and prints it back
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Parse and validate a graph file",
	Long: `Parses a graph written in CGIF, YAML or JSON, validates relation
valences, and prints it in the output format.

The input format is taken from --input, then from the file extension
(.cgif, .yaml, .yml, .json), and defaults to CGIF.

Example:
  pcg check family.cgif --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// describeCmd prints a knowledge file's hierarchies and canon
var describeCmd = &cobra.Command{
	Use:   "describe [knowledge.yaml]",
	Short: "Show the types, graphs and processes of a knowledge file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

// projectCmd projects one graph onto another
var projectCmd = &cobra.Command{
	Use:   "project [target] [filter]",
	Short: "Project a filter graph onto a target graph",
	Long: `Both graphs are given inline as CGIF. On success the projection is
printed followed by the coreference variables the filter bound.

Example:
  pcg project "(Likes [Dog: 'Rex'] [Ball])" "(Likes [Animal: *who] [Ball])"`,
	Args: cobra.ExactArgs(2),
	RunE: runProject,
}

func init() {
	checkCmd.Flags().StringVarP(&inputFormat, "input", "i", "", "Input format: cgif, yaml, json")
	projectCmd.Flags().String("knowledge", "", "Knowledge file whose type hierarchies apply")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	in := inputFormat
	if in == "" {
		in = formatFromExt(path)
	}
	c, err := codec.ByFormat(in)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.IOError("check", err)
	}
	defer f.Close()

	vocab := domain.NewVocabulary()
	g, err := c.Parse(f, vocab)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := g.Validate(vocab.Relations); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("graph is valid",
		zap.String("path", path),
		zap.String("input", c.Format()),
		zap.Int("concepts", len(g.Concepts())),
		zap.Int("relations", len(g.Relations())))

	out, err := codec.New(cfg.Codec.Format, cfg.Codec.SuppressComments)
	if err != nil {
		return err
	}
	return out.Export(g, cmd.OutOrStdout())
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return "cgif"
}

func runDescribe(cmd *cobra.Command, args []string) error {
	k, err := loader.LoadFile(args[0], kb.WithLogger(logger))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprint(w, k.KB.Describe())
	fmt.Fprintln(w, "Processes")
	fmt.Fprintln(w, "---------")
	for _, p := range k.Processes {
		fmt.Fprintf(w, "%s(in: %s; out: %s) %d rules\n",
			p.Name, strings.Join(p.Inputs(), ", "), strings.Join(p.Outputs(), ", "), len(p.Rules))
	}
	return nil
}

func runProject(cmd *cobra.Command, args []string) error {
	svc, closeSvc, err := newService(nil, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	if path, _ := cmd.Flags().GetString("knowledge"); path != "" {
		if _, err := svc.Load(cmd.Context(), path); err != nil {
			return err
		}
	}

	report, err := svc.Project(args[0], args[1])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if report.Projection == nil {
		fmt.Fprintln(w, "no projection")
		return nil
	}
	if err := svc.Render(report.Projection, w); err != nil {
		return err
	}
	for _, cv := range report.Bindings {
		fmt.Fprintf(w, "%s = %s\n", cv.Name, cv.Binding)
	}
	return nil
}
