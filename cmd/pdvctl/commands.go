package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graca-pdv/internal/config"
	"graca-pdv/internal/database"
	"graca-pdv/internal/export"
	"graca-pdv/internal/logger"
	"graca-pdv/internal/receipt"
	"graca-pdv/internal/repository"
	"graca-pdv/internal/service"
)

// app holds what every subcommand needs once the store is open
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	db     database.Service
	sales  service.SalesService
	report service.ReportService
}

func (a *app) open() error {
	a.cfg = config.Load()

	log, err := logger.New(a.cfg.Server.Env, logger.FromConfig(a.cfg.Logger)...)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log

	db, err := database.New(a.cfg.Database)
	if err != nil {
		return err
	}
	if err := database.EnsureSchema(db, log); err != nil {
		db.Close()
		return err
	}
	a.db = db

	a.sales = service.NewSalesService(
		repository.NewSaleRepository(db.DB()),
		receipt.Store{Name: a.cfg.Store.Name, Contact: a.cfg.Store.Contact},
		log,
	)
	a.report = service.NewReportService(repository.NewReportRepository(db.DB()), log)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.log != nil {
		a.log.Sync()
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "pdvctl",
		Short:         "Maintenance tasks for the Graça Presentes point of sale",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(newSchemaCmd(a), newReceiptCmd(a), newExportCmd(a))
	for _, sub := range root.Commands() {
		sub.RunE = a.logged(sub.RunE)
	}
	return root
}

// logged records a failed command in the application log. Cobra skips the
// post-run hook on failure, so the store is closed here.
func (a *app) logged(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil {
			a.log.Error("Command failed",
				zap.String("command", cmd.Name()),
				zap.Strings("args", args),
				zap.Error(err),
			)
			a.close()
		}
		return err
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create or upgrade the store schema and print the migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.GetMigrationStatus(a.db.DB(), a.db.Dialect(), a.log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", a.db.Dialect())
			return nil
		},
	}
}

func newReceiptCmd(a *app) *cobra.Command {
	var (
		saveDir  string
		showQR   bool
		whatsApp string
	)

	cmd := &cobra.Command{
		Use:   "receipt <sale-id>",
		Short: "Print the receipt of a recorded sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sale id %q", args[0])
			}

			text, err := a.sales.Receipt(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, text)

			if saveDir != "" {
				path, err := receipt.SaveText(saveDir, id, text)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "saved %s\n", path)
			}
			if showQR {
				receipt.WriteQR(out, text)
			}
			if whatsApp != "" {
				link, err := receipt.WhatsAppURL(whatsApp, text)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, link)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&saveDir, "save", "", "directory to save comprovante_<id>.txt into")
	cmd.Flags().BoolVar(&showQR, "qr", false, "draw the receipt as a QR code")
	cmd.Flags().StringVar(&whatsApp, "whatsapp", "", "customer phone (DDD + number) to build a WhatsApp link for")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		out      string
		stockCSV string
		cardsCSV string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every report to a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := writeFile(out, func(f *os.File) error {
				return export.WriteWorkbook(f, a.report.Dashboard(ctx))
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)

			if stockCSV != "" {
				if err := writeFile(stockCSV, func(f *os.File) error {
					return export.WriteStockCSV(f, a.report.StockLevels(ctx))
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", stockCSV)
			}
			if cardsCSV != "" {
				if err := writeFile(cardsCSV, func(f *os.File) error {
					return export.WriteCardPaymentsCSV(f, a.report.CardPayments(ctx))
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cardsCSV)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "relatorio.xlsx", "workbook file to write")
	cmd.Flags().StringVar(&stockCSV, "stock-csv", "", "also write stock levels as CSV")
	cmd.Flags().StringVar(&cardsCSV, "cards-csv", "", "also write card payments as CSV")
	return cmd
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
