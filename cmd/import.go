package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estatepulse/crm-cli/internal/importer"
	"github.com/estatepulse/crm-cli/internal/tabular"
)

var (
	importFile   string
	importEntity string
	importCommit bool
	importAI     bool
	importSchema string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import contacts, listings, offers, or tasks from CSV/XLSX",
	Long: `Parses a spreadsheet export, resolves its columns against the entity's
alias dictionary, normalizes each row into a draft record, and prints a
per-field coverage report. Nothing is written unless --commit is set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		entity := importer.EntityType(strings.ToLower(importEntity))

		opts := []importer.Option{}
		if importSchema != "" {
			schemas, err := importer.LoadSchemaOverrides(importSchema)
			if err != nil {
				return err
			}
			opts = append(opts, importer.WithSchemas(schemas))
		}
		opts = append(opts, importer.WithPriceConfig(importer.PriceConfig{
			Narrow: importer.PriceRange{Min: cfg.Import.PriceNarrowMin, Max: cfg.Import.PriceNarrowMax},
			Wide:   importer.PriceRange{Min: cfg.Import.PriceWideMin, Max: cfg.Import.PriceWideMax},
		}))
		if importAI {
			ai := newAssist()
			if ai == nil {
				return eris.New("--ai requires anthropic.key (ESTATEPULSE_ANTHROPIC_KEY)")
			}
			opts = append(opts, importer.WithRemapper(ai))
		}
		imp := importer.New(opts...)

		preview, err := parseFile(cmd, imp, entity)
		if err != nil {
			return err
		}

		printCoverage(cmd, preview)
		cmd.Printf("parsed %d rows into %d draft %s\n", len(preview.Rows), len(preview.Drafts), preview.Entity)

		if !importCommit {
			cmd.Println("dry run: pass --commit to write records")
			return nil
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		scope, err := actorScope(ctx, newService(st))
		if err != nil {
			return err
		}

		report := imp.Commit(ctx, st, importer.Context{
			AgencyID:    scope.AgencyID,
			ActorUserID: scope.UserID,
		}, preview)

		cmd.Printf("committed: %d succeeded, %d failed\n", report.Succeeded, report.Failed)
		for _, e := range report.Errors {
			cmd.Printf("  error: %s\n", e)
		}
		if report.Failed > 0 {
			zap.L().Warn("import finished with failures",
				zap.Int("failed", report.Failed),
				zap.String("file", importFile),
			)
		}
		return nil
	},
}

func parseFile(cmd *cobra.Command, imp *importer.Importer, entity importer.EntityType) (*importer.Preview, error) {
	ext := strings.ToLower(filepath.Ext(importFile))
	if ext == ".xlsx" {
		header, data, err := importer.ReadXLSX(importFile)
		if err != nil {
			return nil, err
		}
		return imp.ParseRows(cmd.Context(), header, data, entity)
	}

	raw, err := os.ReadFile(importFile)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", importFile)
	}
	preview, err := imp.ParseText(cmd.Context(), string(raw), entity)
	if eris.Is(err, tabular.ErrNoData) {
		return nil, eris.Wrapf(err, "%s has no data rows", importFile)
	}
	return preview, err
}

func printCoverage(cmd *cobra.Command, p *importer.Preview) {
	fields := make([]string, 0, len(p.Coverage))
	for f := range p.Coverage {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	cmd.Println("field coverage:")
	for _, f := range fields {
		cmd.Println(fmt.Sprintf("  %-14s %s", f, p.Coverage[f]))
	}
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to CSV or XLSX file (required)")
	importCmd.Flags().StringVar(&importEntity, "entity", "contacts", "entity type: contacts, listings, offers, tasks")
	importCmd.Flags().BoolVar(&importCommit, "commit", false, "write records after parsing")
	importCmd.Flags().BoolVar(&importAI, "ai", false, "run the AI column-remap pre-pass")
	importCmd.Flags().StringVar(&importSchema, "schema", "", "YAML file with per-entity schema overrides")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
