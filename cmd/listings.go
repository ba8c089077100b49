package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/estatepulse/crm-cli/internal/model"
)

var (
	listingAddress string
	listingSeller  string
	listingPrice   float64
	listingStatus  string
	listingNotes   string
)

// moneyPrinter renders prices with thousands separators ("$1,250,000").
var moneyPrinter = message.NewPrinter(language.English)

func formatMoney(v float64) string {
	if v == 0 {
		return "-"
	}
	return moneyPrinter.Sprintf("$%.0f", v)
}

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Manage property listings",
}

var listingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List listings visible to the acting user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		scope, err := actorScope(ctx, newService(st))
		if err != nil {
			return err
		}
		listings, err := st.ListListings(ctx, scope)
		if err != nil {
			return err
		}
		for _, l := range listings {
			shell := ""
			if l.Shell() {
				shell = "  (shell)"
			}
			cmd.Printf("%s  %-30s %-14s %s%s\n", l.ID, l.Address, l.Status, formatMoney(l.Price), shell)
		}
		cmd.Printf("%d listings\n", len(listings))
		return nil
	},
}

var listingsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a listing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := newService(st)
		scope, err := actorScope(ctx, svc)
		if err != nil {
			return err
		}
		l, err := svc.CreateListing(ctx, scope, model.Listing{
			Address:    listingAddress,
			SellerName: listingSeller,
			Price:      listingPrice,
			Status:     model.ListingStatus(listingStatus),
			Notes:      listingNotes,
		})
		if err != nil {
			return err
		}
		cmd.Printf("created listing %s at %s (%s)\n", l.ID, l.Address, l.Status)
		return nil
	},
}

var listingsAdvanceCmd = &cobra.Command{
	Use:   "advance <id>",
	Short: "Move a listing to the next pipeline stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := newService(st)
		scope, err := actorScope(ctx, svc)
		if err != nil {
			return err
		}
		l, err := svc.AdvanceListing(ctx, scope, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("%s is now %s\n", l.Address, l.Status)
		return nil
	},
}

var listingsScoreCmd = &cobra.Command{
	Use:   "score <id>",
	Short: "AI closing-likelihood score for a listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := newService(st)
		scope, err := actorScope(ctx, svc)
		if err != nil {
			return err
		}
		score, err := svc.ScoreDeal(ctx, scope, args[0])
		if err != nil {
			return err
		}
		if score == nil {
			cmd.Println("deal scoring unavailable (no AI key configured, or the model did not answer)")
			return nil
		}
		cmd.Printf("score: %d/100 (%s urgency)\n%s\n", score.Score, score.Urgency, score.Explanation)
		for _, r := range score.Risks {
			cmd.Printf("  risk: %s\n", r)
		}
		return nil
	},
}

func init() {
	listingsAddCmd.Flags().StringVar(&listingAddress, "address", "", "property address (required)")
	listingsAddCmd.Flags().StringVar(&listingSeller, "seller", "", "seller name")
	listingsAddCmd.Flags().Float64Var(&listingPrice, "price", 0, "asking price")
	listingsAddCmd.Flags().StringVar(&listingStatus, "status", "", "pipeline stage (New, Active, Under Contract, Sold)")
	listingsAddCmd.Flags().StringVar(&listingNotes, "notes", "", "free-form notes")
	_ = listingsAddCmd.MarkFlagRequired("address")

	listingsCmd.AddCommand(listingsListCmd, listingsAddCmd, listingsAdvanceCmd, listingsScoreCmd)
	rootCmd.AddCommand(listingsCmd)
}
