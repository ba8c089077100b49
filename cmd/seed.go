package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estatepulse/crm-cli/internal/model"
	"github.com/estatepulse/crm-cli/internal/store"
)

// seedCmd loads the demo dataset: two tenants with staff, listings,
// offers, and tasks, enough to exercise every command without an
// import file.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo agencies and records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if err := seed(ctx, st); err != nil {
			return err
		}
		cmd.Println("seeded demo data; try --agency agency-1 --as alex@eliterealty.com")
		return nil
	},
}

func seed(ctx context.Context, st store.Store) error {
	now := time.Now().UTC()

	agencies := []model.Agency{
		{ID: "agency-1", Name: "Elite Realty Group", Plan: model.PlanPro, AICredits: 500, AILimits: 1000, CreatedAt: now},
		{ID: "agency-2", Name: "Summit Properties", Plan: model.PlanBasic, AICredits: 100, AILimits: 200, CreatedAt: now},
	}
	users := []model.User{
		{ID: "user-1", AgencyID: "agency-1", Name: "Alex Admin", Email: "alex@eliterealty.com", Role: model.RoleAdmin, Status: "Active"},
		{ID: "user-2", AgencyID: "agency-1", Name: "Sarah Agent", Email: "sarah@eliterealty.com", Role: model.RoleAgent, Status: "Active"},
		{ID: "user-3", AgencyID: "agency-1", Name: "Tom Member", Email: "tom@eliterealty.com", Role: model.RoleTeamMember, Status: "Active"},
		{ID: "user-4", AgencyID: "agency-2", Name: "Maria Admin", Email: "maria@summitprops.com", Role: model.RoleAdmin, Status: "Active"},
	}
	contacts := []model.Contact{
		{ID: "contact-1", AgencyID: "agency-1", Name: "John Smith", Phone: "+1 555-0101", Email: "john.smith@example.com", Tags: []string{"buyer", "hot-lead"}, AssignedTo: "user-2", CreatedAt: now},
		{ID: "contact-2", AgencyID: "agency-1", Name: "Emma Wilson", Phone: "+1 555-0102", Email: "emma.w@example.com", Tags: []string{"seller"}, AssignedTo: "user-2", CreatedAt: now},
		{ID: "contact-3", AgencyID: "agency-2", Name: "David Lee", Phone: "+1 555-0201", Email: "dlee@example.com", Tags: []string{"investor"}, AssignedTo: "user-4", CreatedAt: now},
	}
	listings := []model.Listing{
		{ID: "listing-1", AgencyID: "agency-1", Address: "123 Maple Street", SellerName: "Emma Wilson", Price: 450_000, AssignedAgent: "user-2", Status: model.ListingActive, CreatedAt: now},
		{ID: "listing-2", AgencyID: "agency-1", Address: "456 Oak Avenue", SellerName: "Robert Brown", Price: 725_000, AssignedAgent: "user-2", Status: model.ListingUnderContract, CreatedAt: now},
		{ID: "listing-3", AgencyID: "agency-2", Address: "789 Pine Road", SellerName: "Linda Green", Price: 310_000, AssignedAgent: "user-4", Status: model.ListingNew, CreatedAt: now},
	}
	offers := []model.Offer{
		{
			ID: "offer-1", AgencyID: "agency-1", ListingID: "listing-1", BuyerName: "John Smith",
			Price: 440_000, DownPayment: 88_000, EarnestMoney: 5_000,
			Financing: model.FinancingConventional, InspectionPeriod: 10,
			Contingencies: []string{"financing", "inspection"}, ClosingDate: "2026-10-15",
			Status: model.OfferInTalks, AssignedTo: "user-2", CreatedAt: now,
		},
		{
			ID: "offer-2", AgencyID: "agency-1", ListingID: "listing-2", BuyerName: "Carol Danvers",
			Price: 720_000, DownPayment: 144_000, EarnestMoney: 10_000,
			Financing: model.FinancingCash, Status: model.OfferAccepted, AssignedTo: "user-2", CreatedAt: now,
		},
	}
	tasks := []model.Task{
		{ID: "task-1", AgencyID: "agency-1", Title: "Schedule photographer for 123 Maple", AssignedTo: "user-2", DueDate: "2026-09-05", Status: model.TaskPending, Priority: model.PriorityHigh, CreatedAt: now},
		{ID: "task-2", AgencyID: "agency-1", Title: "Send disclosure packet to John Smith", AssignedTo: "user-3", DueDate: "2026-09-03", Status: model.TaskPending, Priority: model.PriorityMedium, CreatedAt: now},
		{ID: "task-3", AgencyID: "agency-2", Title: "Draft listing agreement for Pine Road", AssignedTo: "user-4", Status: model.TaskDone, Priority: model.PriorityLow, CreatedAt: now},
	}

	for _, a := range agencies {
		if err := st.SaveAgency(ctx, a); err != nil {
			return err
		}
	}
	for _, u := range users {
		if err := st.SaveUser(ctx, u); err != nil {
			return err
		}
	}
	for _, c := range contacts {
		if err := st.SaveContact(ctx, c); err != nil {
			return err
		}
	}
	for _, l := range listings {
		if err := st.SaveListing(ctx, l); err != nil {
			return err
		}
	}
	for _, o := range offers {
		if err := st.SaveOffer(ctx, o); err != nil {
			return err
		}
	}
	for _, t := range tasks {
		if err := st.SaveTask(ctx, t); err != nil {
			return err
		}
	}

	zap.L().Info("seed complete",
		zap.Int("agencies", len(agencies)),
		zap.Int("users", len(users)),
		zap.Int("listings", len(listings)),
	)
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
