package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/config"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/database"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/ledger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/logger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/repository"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/services"
	"github.com/spf13/cobra"
)

// openDatabase connects to the journal database named by the environment.
func openDatabase(ctx context.Context) (*config.Config, *database.Database, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage != config.StoragePostgres {
		return nil, nil, fmt.Errorf("STORAGE=%s has no persistent journal; set STORAGE=postgres", cfg.Storage)
	}

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

// openService replays the persisted journal into a read-only service.
func openService(ctx context.Context) (services.LedgerService, func(), error) {
	cfg, db, err := openDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}

	feeBps := int64(cfg.Platform.FeeBps)
	l, err := ledger.New(ctx, ledger.Options{
		Journal:  repository.NewPostgresJournal(db),
		Owner:    models.ParseAccount(cfg.Platform.Owner),
		Treasury: models.ParseAccount(cfg.Platform.Treasury),
		FeeBps:   &feeBps,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return services.NewLedgerService(l, logger.Nop()), db.Close, nil
}

func migrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending journal migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if dryRun {
				pending, err := db.PendingMigrations()
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(out, "No pending migrations")
					return nil
				}
				for _, id := range pending {
					fmt.Fprintf(out, "pending  %s\n", id)
				}
				return nil
			}

			n, err := db.Migrate()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Applied %d migration(s)\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Replay the journal and print platform totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			return writeSummary(cmd.OutOrStdout(), svc.Summary())
		},
	}
}

func propertiesCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Replay the journal and list properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.Status
			if status != "" {
				parsed, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = parsed
			}

			svc, closeDB, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			return writeProperties(cmd.OutOrStdout(), svc.ListProperties(filter))
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only list properties in this status (open, funded, expired, cancelled)")
	return cmd
}

func writeSummary(w io.Writer, s services.PlatformSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Owner:\t%s\n", s.Owner)
	fmt.Fprintf(tw, "Treasury:\t%s\n", s.Treasury)
	fmt.Fprintf(tw, "Fee:\t%d bps\n", s.FeeBps)
	fmt.Fprintf(tw, "Properties:\t%d\n", s.PropertyCount)
	fmt.Fprintf(tw, "Investment volume:\t%s ETH\n", s.TotalInvestmentVolume.EtherString())
	fmt.Fprintf(tw, "Treasury balance:\t%s ETH\n", s.TreasuryBalance.EtherString())
	fmt.Fprintf(tw, "Journal sequence:\t%d\n", s.Sequence)
	return tw.Flush()
}

func writeProperties(w io.Writer, properties []models.Property) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSOLD\tPRICE (ETH)\tESCROW (ETH)\tOWNER")
	for _, p := range properties {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Status, p.TokensSold, p.TotalTokens,
			p.TokenPrice.EtherString(), p.EscrowBalance.EtherString(), p.Owner)
	}
	return tw.Flush()
}
