// cmd/builder1/main.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// This binary is a code-generation tool.
//
// It reads either an annotated struct or a builder spec file and writes a
// <Type>Builder with one chainable setter per field and a Build() that copies
// the staged values into a fresh value.
//
// Key behaviors:
// - --type: parse the package directory, find the struct, require //obuild:builder
// - --spec: decode *.builder.json / *.builder.yaml, resolve imports via the owner file
// - Keeps only imports referenced by field types, adds slices/maps for cloning
// - gofmts the output and writes it atomically (temp file + rename)

const usageLine = "usage: builder1 (--type <Name> | --spec <file.builder.json|yaml>) --out <file.gen.go> [--dir <pkgdir>] [--dry-run] [-v]"

// options holds the parsed command line.
type options struct {
	specPath string
	typeName string
	dir      string
	outPath  string
	dryRun   bool
	verbose  bool
}

func newLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return logger
}

func newRootCommand(stdout io.Writer, logger *logrus.Logger) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "builder1",
		Short: "Generate a chainable builder for a plain Go struct",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, args)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if opts.verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
			return generate(opts, stdout, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.typeName, "type", "", "annotated struct to generate a builder for")
	flags.StringVar(&opts.specPath, "spec", "", "path to a *.builder.json or *.builder.yaml spec")
	flags.StringVar(&opts.dir, "dir", "", "package directory to scan for --type (default: directory of --out)")
	flags.StringVar(&opts.outPath, "out", "", "output .gen.go file path")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print generated source to stdout instead of writing --out")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	return cmd
}

// run executes the generator and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	logger := newLogger(stderr)

	cmd := newRootCommand(stdout, logger)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, ErrUsage) {
			_, _ = fmt.Fprintln(stderr, err)
			_, _ = fmt.Fprintln(stderr, usageLine)
			return 2
		}
		logger.WithError(err).Error("generation failed")
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func checkOptions(opts *options) error {
	hasSpec := strings.TrimSpace(opts.specPath) != ""
	hasType := strings.TrimSpace(opts.typeName) != ""

	switch {
	case strings.TrimSpace(opts.outPath) == "":
		return fmt.Errorf("%w: missing --out", ErrUsage)
	case hasSpec && hasType:
		return fmt.Errorf("%w: use only one of --spec or --type", ErrUsage)
	case !hasSpec && !hasType:
		return fmt.Errorf("%w: missing --spec or --type", ErrUsage)
	}
	return nil
}

// generate resolves the spec for opts, renders the builder and writes it.
func generate(opts *options, stdout io.Writer, logger *logrus.Logger) error {
	if err := checkOptions(opts); err != nil {
		return err
	}

	generatedFilePath := filepath.Clean(opts.outPath)
	packageDir := filepath.Dir(generatedFilePath)

	var (
		spec       *Spec
		source     *sourceFile
		candidates []ImportSpec
		err        error
	)

	if opts.typeName != "" {
		scanDir := packageDir
		if strings.TrimSpace(opts.dir) != "" {
			scanDir = filepath.Clean(opts.dir)
		}
		spec, source, err = specFromStruct(scanDir, opts.typeName)
		if err != nil {
			return err
		}
		candidates = source.Imports
		logger.WithFields(logrus.Fields{"type": spec.Type, "file": source.Path}).Debug("found annotated struct")
	} else {
		var raw []byte
		spec, raw, err = loadSpec(opts.specPath)
		if err != nil {
			return err
		}
		source = &sourceFile{Path: opts.specPath, Content: raw}
		candidates = append(candidates, spec.Imports...)

		ownerGoFilePath, ownerErr := findOwnerGoGenerateFile(packageDir)
		if ownerErr != nil {
			// Spec imports alone may be enough.
			logger.WithError(ownerErr).Debug("no owner file")
		} else if ownerImports, readErr := readImportsFromFile(ownerGoFilePath); readErr == nil {
			candidates = append(candidates, ownerImports...)
			logger.WithField("owner", ownerGoFilePath).Debug("using owner file imports")
		}
	}

	applyDefaults(spec)
	if err := validateSpec(spec); err != nil {
		return err
	}

	importsList, err := resolveImports(spec.Fields, candidates)
	if err != nil {
		return err
	}

	generated, err := render(newTemplateData(spec, source.Path, source.Content, importsList))
	if err != nil {
		return err
	}

	if opts.dryRun {
		_, err = stdout.Write(generated)
		return err
	}

	if err := writeFileAtomic(generatedFilePath, generated, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", generatedFilePath, err)
	}

	logger.WithFields(logrus.Fields{
		"builder": spec.BuilderName,
		"fields":  len(spec.Fields),
		"out":     generatedFilePath,
	}).Info("builder generated")
	return nil
}
