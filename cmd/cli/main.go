// tourdesk CLI: offline reconciliation and snapshot management against the
// configured table source.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tourdesk/internal/alias"
	"tourdesk/internal/reconcile"
	"tourdesk/internal/render"
	"tourdesk/internal/source"
	"tourdesk/pkg/database"
	"tourdesk/pkg/models"
	"tourdesk/pkg/utils"
)

func main() {
	root := &cobra.Command{
		Use:           "tourdesk",
		Short:         "Travel reservation back-office tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		reconcileCmd(),
		renderCmd(),
		keysCmd(),
		tablesCmd(),
		importCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func reconcileCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reconcile <key>",
		Short: "Consolidate every record for an order, email or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			out, err := engine.Reconcile(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			printSummary(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full consolidated order as JSON")
	return cmd
}

func renderCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "render <key>",
		Short: "Render the confirmation document for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			doc, out, err := engine.Document(ctx, args[0])
			if err != nil {
				return err
			}

			if outDir == "" {
				fmt.Print(doc)
				return nil
			}

			exporter := render.DirExporter{Dir: outDir}
			name := fmt.Sprintf("confirmation-%s.txt", out.OrderID)
			if out.OrderID == "" {
				name = "confirmation.txt"
			}
			if err := exporter.Export(ctx, name, []byte(doc)); err != nil {
				return err
			}
			fmt.Println("written:", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write the document into this directory")
	return cmd
}

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List candidate search keys across all sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			keys, err := engine.SearchKeys(ctx)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables [service]",
		Short: "Show loaded sources, or dump one table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			if len(args) == 0 {
				res := source.FetchAll(ctx, engine.Loader())
				for _, t := range res.Tables {
					status := fmt.Sprintf("%d rows", len(t.Rows))
					if err, failed := res.Errors[t.Service]; failed {
						status = "error: " + err.Error()
					}
					fmt.Printf("%-10s %s\n", t.Service, status)
				}
				return nil
			}

			svc, ok := models.ParseService(args[0])
			if !ok {
				return fmt.Errorf("unknown source %q", args[0])
			}
			t, err := engine.Loader().Load(ctx, svc)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Import an exported workbook into the local snapshot store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := source.OpenWorkbook(args[0])
			if err != nil {
				return err
			}

			db := database.MustOpen(database.DefaultConfig())
			defer db.Close()
			if err := database.Migrate(db); err != nil {
				return err
			}
			store := source.NewStore(db)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			for _, t := range loader.Tables() {
				if err := store.Save(ctx, t); err != nil {
					return err
				}
				fmt.Printf("%-10s %d rows\n", t.Service, len(t.Rows))
			}
			return nil
		},
	}
}

// buildEngine assembles the engine the same way the api server does, from
// TOURDESK_* env config.
func buildEngine() (*reconcile.Engine, func(), error) {
	cfg := utils.LoadEngineConfig()
	cleanup := func() {}

	aliases := alias.NewResolver()
	if cfg.AliasConfigPath != "" {
		if err := aliases.LoadYAML(cfg.AliasConfigPath); err != nil {
			return nil, cleanup, err
		}
	}
	if cfg.AliasOverridesCSV != "" {
		if err := aliases.LoadOverridesCSV(cfg.AliasOverridesCSV); err != nil {
			return nil, cleanup, err
		}
	}

	var loader source.Loader
	switch cfg.SourceKind {
	case "gateway":
		loader = source.NewGatewayClient(cfg.GatewayURL)
	case "sqlite":
		db := database.MustOpen(database.DefaultConfig())
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, cleanup, err
		}
		loader = source.NewStore(db)
		cleanup = func() { db.Close() }
	case "workbook":
		wb, err := source.OpenWorkbook(cfg.WorkbookPath)
		if err != nil {
			return nil, cleanup, err
		}
		loader = wb
	case "bigquery":
		bq, err := source.NewBigQueryLoader(context.Background(), cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, cleanup, err
		}
		loader = bq
		cleanup = func() { bq.Close() }
	default:
		return nil, cleanup, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
	}

	var templates render.TemplateProvider = render.StaticProvider{Text: render.DefaultTemplate}
	if cfg.TemplatePath != "" {
		templates = render.FileProvider{Path: cfg.TemplatePath}
	}

	return reconcile.NewEngine(loader, aliases, templates, cfg.ReportingCurrency), cleanup, nil
}

func printSummary(out *models.ConsolidatedOrder) {
	fmt.Println("주문번호:", out.OrderID)
	fmt.Println("예약자:", out.Fields["koreanName"])
	fmt.Println("이메일:", out.Fields["email"])
	fmt.Printf("인원: 성인 %s / 아동 %s / 유아 %s\n",
		out.Fields["adults"], out.Fields["children"], out.Fields["toddlers"])

	for _, sec := range out.Sections {
		fmt.Printf("[%s] %d items\n", sec.Title, len(sec.Items))
	}

	fmt.Println("합계:")
	fmt.Println(out.Fields["subtotals"])
	fmt.Println("총 합계:", out.Fields["grandTotal"])
	if len(out.SourceErrors) > 0 {
		fmt.Println("경고: 일부 소스 로드 실패:")
		for svc, msg := range out.SourceErrors {
			fmt.Printf("  %s: %s\n", svc, msg)
		}
	}
}
