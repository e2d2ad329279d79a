package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hivehr/hivehr/internal/repository"
	"github.com/hivehr/hivehr/internal/service"
)

func ReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Re-enqueue ingestion for an organization's policies",
		Long:  "Enqueue an ingest job for every active policy document of an organization. The running server's ingest worker picks the jobs up.",
		RunE:  runReindex,
	}

	cmd.Flags().StringP("org", "o", "", "Organization ID or name (required)")
	cmd.MarkFlagRequired("org")

	return cmd
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	orgRef, _ := cmd.Flags().GetString("org")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	orgRepo := repository.NewOrgRepository(pool)
	policyRepo := repository.NewPolicyRepository(pool)
	ingestJobRepo := repository.NewIngestJobRepository(pool)

	orgID, err := resolveOrgID(ctx, orgRepo, orgRef)
	if err != nil {
		return err
	}

	policySvc := service.NewPolicyService(policyRepo, ingestJobRepo, &service.DefaultUUIDGenerator{})

	enqueued, err := policySvc.ReindexOrg(ctx, orgID)
	if err != nil {
		return fmt.Errorf("failed to reindex organization: %w", err)
	}

	fmt.Printf("Enqueued %d ingest jobs for organization %s\n", enqueued, orgID)
	return nil
}
