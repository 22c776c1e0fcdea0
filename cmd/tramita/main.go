package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolbeans/tramita/pkg/citation"
	"github.com/coolbeans/tramita/pkg/config"
	"github.com/coolbeans/tramita/pkg/ingest"
	"github.com/coolbeans/tramita/pkg/logging"
	"github.com/coolbeans/tramita/pkg/metrics"
	"github.com/coolbeans/tramita/pkg/pipeline"
	"github.com/coolbeans/tramita/pkg/store"
	"github.com/coolbeans/tramita/pkg/types"
)

var version = "0.1.0"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	executed, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, "Error:", err)
	if pipeline.IsConfigurationError(err) {
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, executed.UsageString())
	}
	return 1
}

// usageError marks command-line mistakes as configuration errors.
func usageError(err error) error {
	if err == nil || pipeline.IsConfigurationError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", pipeline.ErrConfiguration, err)
}

type runOptions struct {
	minYear    int
	dedupOrder string
	replace    bool
	driver     string
	dsn        string
	dryRun     bool
	noLookup   bool
	verbose    bool
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	var grammarsPath string
	options := runOptions{}

	rootCmd := &cobra.Command{
		Use:   "tramita TYPE PROPOSAL_FILES LEI_FILES",
		Short: "Link municipal legislative proposals to the laws they became",
		Long: `Tramita joins a council's proposal exports with its enacted-law exports.

Each law's full text is scanned for the citation of the proposal it came
from; proposals are left-joined to those citations, their authors are
resolved to CPFs through the eleitoral.depara_vereadores_camara_tse table
and the merged rows are appended to eleitoral.<table> for the document type.

TYPE is one of: lei, lei_comp, decreto, emenda.
PROPOSAL_FILES and LEI_FILES are comma-separated lists of semicolon CSVs.

Example:
  tramita lei projetos_2010.csv,projetos_2011.csv leis.csv
  tramita decreto pdl.csv decretos.csv --dry-run --no-lookup
  tramita lei projetos.csv leis.csv --driver sqlite --dsn tramita.db --replace`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.ExactArgs(3)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntegration(cmd, args, grammarsPath, options)
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.PersistentFlags().StringVar(&grammarsPath, "grammars", "", "YAML file replacing the built-in citation grammars")

	flags := rootCmd.Flags()
	flags.IntVar(&options.minYear, "min-year", ingest.DefaultMinYear, "Drop proposals from before this year (0 keeps all)")
	flags.StringVar(&options.dedupOrder, "dedup-order", string(ingest.DedupBeforeSort), "When duplicates are removed: before-sort or after-sort")
	flags.BoolVar(&options.replace, "replace", false, "Delete existing rows in the destination table before writing")
	flags.StringVar(&options.driver, "driver", string(store.DialectPostgres), "Database driver: postgres or sqlite")
	flags.StringVar(&options.dsn, "dsn", "", "Connection string (default built from POSTGRES_* variables)")
	flags.BoolVar(&options.dryRun, "dry-run", false, "Run every stage except writing the merged rows")
	flags.BoolVar(&options.noLookup, "no-lookup", false, "Leave cpfs empty instead of reading the lookup table")
	flags.BoolVarP(&options.verbose, "verbose", "v", false, "Log at debug level")
	flags.BoolVar(&options.jsonOutput, "json", false, "Print the run report as JSON")

	rootCmd.AddCommand(extractCmd(&grammarsPath))
	rootCmd.AddCommand(grammarsCmd(&grammarsPath))

	return rootCmd
}

func runIntegration(cmd *cobra.Command, args []string, grammarsPath string, options runOptions) error {
	ctx := cmd.Context()

	documentType, err := types.ParseDocumentType(args[0])
	if err != nil {
		return usageError(err)
	}
	dedupOrder, err := ingest.ParseDedupOrder(options.dedupOrder)
	if err != nil {
		return usageError(err)
	}
	registry, err := loadRegistry(grammarsPath)
	if err != nil {
		return usageError(err)
	}

	runtime := config.RuntimeFromEnv(os.LookupEnv)
	logger, err := logging.New(logging.Options{Level: runtime.LogLevel, Verbose: options.verbose})
	if err != nil {
		return usageError(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := pipeline.DefaultConfig()
	cfg.DocumentType = documentType
	cfg.ProposalFiles = splitList(args[1])
	cfg.LawFiles = splitList(args[2])
	cfg.MinYear = options.minYear
	cfg.DedupOrder = dedupOrder
	cfg.DryRun = options.dryRun
	cfg.SkipLookup = options.noLookup
	if options.replace {
		cfg.WriteMode = store.WriteReplace
	}
	if err := cfg.Validate(); err != nil {
		return usageError(err)
	}

	var lookup pipeline.LookupSource
	var sink pipeline.Sink
	if !cfg.DryRun || !cfg.SkipLookup {
		database, err := openDatabase(ctx, options)
		if err != nil {
			return err
		}
		defer database.Close()
		lookup = database
		sink = database
		logger.Debug("Connected to database", zap.String("driver", string(database.Dialect())))
	}

	runMetrics := metrics.New()
	p := pipeline.New(registry, lookup, sink,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(runMetrics))

	report, runErr := p.Run(ctx, cfg)

	if runtime.PushgatewayURL != "" {
		if err := runMetrics.Push(ctx, runtime.PushgatewayURL, documentType.String()); err != nil {
			logger.Warn("Failed to push metrics", zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	if options.jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Summary())
	return nil
}

// openDatabase connects with --dsn, or with the POSTGRES_* settings when
// no DSN is given for the postgres driver.
func openDatabase(ctx context.Context, options runOptions) (*store.Database, error) {
	dialect, err := store.ParseDialect(options.driver)
	if err != nil {
		return nil, usageError(err)
	}

	dsn := options.dsn
	if dsn == "" {
		if dialect != store.DialectPostgres {
			return nil, usageError(fmt.Errorf("--dsn is required for the %s driver", dialect))
		}
		settings, err := config.DatabaseFromEnv(os.LookupEnv)
		if err != nil {
			return nil, usageError(err)
		}
		dsn = settings.DSN()
	}

	database, err := store.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrPersistence, err)
	}
	return database, nil
}

func loadRegistry(grammarsPath string) (*citation.CitationRegistry, error) {
	if grammarsPath == "" {
		return citation.NewDefaultRegistry()
	}
	grammars, err := citation.LoadGrammars(grammarsPath)
	if err != nil {
		return nil, err
	}
	return citation.NewRegistryFromGrammars(grammars)
}

// splitList splits a comma-separated argument, dropping empty entries.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func extractCmd(grammarsPath *string) *cobra.Command {
	var documentTypeName string
	var showAll bool

	cmd := &cobra.Command{
		Use:   "extract TEXT...",
		Short: "Extract the proposal key cited in law texts",
		Long: `Extract the proposal key each TEXT cites, one line per TEXT.
An empty line means no citation was found.

Example:
  tramita extract --type lei "Lei 15.000 (Projeto de Lei nº 123/2009)"
  tramita extract --type decreto --all "..."`,
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.MinimumNArgs(1)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			documentType, err := types.ParseDocumentType(documentTypeName)
			if err != nil {
				return usageError(err)
			}
			registry, err := loadRegistry(*grammarsPath)
			if err != nil {
				return usageError(err)
			}
			parser, ok := registry.Get(documentType)
			if !ok {
				return usageError(fmt.Errorf("no grammar for document type %s", documentType))
			}

			out := cmd.OutOrStdout()
			for _, text := range args {
				if !showAll {
					fmt.Fprintln(out, parser.Extract(text))
					continue
				}
				for _, found := range parser.Parse(text) {
					fmt.Fprintf(out, "%s\t%d\t%q\n", found.Key, found.TextOffset, found.RawText)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&documentTypeName, "type", "t", string(types.DocumentLei), "Document type grammar to apply")
	cmd.Flags().BoolVar(&showAll, "all", false, "Print every citation with its offset in the normalized text")

	return cmd
}

func grammarsCmd(grammarsPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "grammars",
		Short: "List the citation grammars and their destination tables",
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.NoArgs(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var grammars []citation.Grammar
			var err error
			if *grammarsPath == "" {
				grammars, err = citation.DefaultGrammars()
			} else {
				grammars, err = citation.LoadGrammars(*grammarsPath)
			}
			if err != nil {
				return usageError(err)
			}

			out := cmd.OutOrStdout()
			for _, grammar := range grammars {
				pattern, err := grammar.Compile()
				if err != nil {
					return usageError(err)
				}
				destination := store.Table{Schema: types.DestinationSchema, Name: grammar.Type.DestinationTable()}
				fmt.Fprintf(out, "%s\n", grammar.Type)
				fmt.Fprintf(out, "  prefixes:    %s\n", strings.Join(grammar.Prefixes, " | "))
				fmt.Fprintf(out, "  separators:  %s\n", describeSeparators(grammar))
				fmt.Fprintf(out, "  pattern:     %s\n", pattern)
				fmt.Fprintf(out, "  destination: %s\n", destination)
			}
			return nil
		},
	}
}

func describeSeparators(grammar citation.Grammar) string {
	quoted := make([]string, len(grammar.Separators))
	for i, separator := range grammar.Separators {
		quoted[i] = fmt.Sprintf("%q", separator)
	}
	description := strings.Join(quoted, " | ")
	if grammar.OptionalSeparator {
		description += " (optional)"
	}
	return description
}
