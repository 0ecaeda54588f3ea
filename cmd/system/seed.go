package system

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/99-jordan/yarro-maintenance-triage/config"
	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
	"github.com/99-jordan/yarro-maintenance-triage/pkg/database"
)

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo tickets for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			db, err := database.NewGormFromCentral(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			drv := store.NewPostgresDriver(db)
			ctx := context.Background()

			tenant := uuid.New()
			landlord := uuid.New()
			property := uuid.New()

			seeds := []struct {
				title, description string
				severity           store.Severity
			}{
				{"Leaking kitchen tap", "Drips constantly even when closed tight.", store.SeverityNormal},
				{"No hot water", "Boiler shows error E119 and the radiators are cold.", store.SeverityUrgent},
				{"Cracked bedroom window", "Small crack in the corner, not letting in rain yet.", store.SeverityLow},
			}

			for _, s := range seeds {
				t := &store.Ticket{
					TenantID:    tenant,
					PropertyID:  property,
					LandlordID:  landlord,
					Title:       s.title,
					Description: s.description,
					Severity:    s.severity,
				}
				if err := drv.CreateTicket(ctx, t); err != nil {
					return fmt.Errorf("seed ticket %q: %w", s.title, err)
				}
				meta, err := store.PlainMeta().Encode()
				if err != nil {
					return err
				}
				if err := drv.CreateMessage(ctx, &store.Message{
					TicketID: t.ID,
					SenderID: tenant,
					Body:     s.description,
					Meta:     meta,
				}); err != nil {
					return fmt.Errorf("seed message for %q: %w", s.title, err)
				}
				fmt.Printf("seeded ticket %s (%s)\n", t.ID, s.title)
			}

			return nil
		},
	}

	return cmd
}
