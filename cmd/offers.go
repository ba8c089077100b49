package main

import (
	"github.com/spf13/cobra"

	"github.com/estatepulse/crm-cli/internal/model"
)

var (
	offerBuyer         string
	offerAddress       string
	offerPrice         float64
	offerDown          float64
	offerEarnest       float64
	offerFinancing     string
	offerInspection    int
	offerContingencies []string
	offerClosing       string
)

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Manage purchase offers",
}

var offersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List offers visible to the acting user",
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
		offers, err := st.ListOffers(ctx, scope)
		if err != nil {
			return err
		}
		for _, o := range offers {
			cmd.Printf("%s  %-24s %-14s %-12s %s\n", o.ID, o.BuyerName, o.Status, o.Financing, formatMoney(o.Price))
		}
		cmd.Printf("%d offers\n", len(offers))
		return nil
	},
}

var offersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an offer, anchoring it to a listing by address",
	Long: `Creates an offer. When --address matches an existing listing the offer
attaches to it; otherwise a shell listing is created for the address.`,
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
		o, err := svc.CreateOffer(ctx, scope, model.Offer{
			BuyerName:        offerBuyer,
			Price:            offerPrice,
			DownPayment:      offerDown,
			EarnestMoney:     offerEarnest,
			Financing:        model.Financing(offerFinancing),
			InspectionPeriod: offerInspection,
			Contingencies:    offerContingencies,
			ClosingDate:      offerClosing,
		}, offerAddress)
		if err != nil {
			return err
		}
		cmd.Printf("created offer %s from %s at %s (%s)\n", o.ID, o.BuyerName, formatMoney(o.Price), o.Status)
		return nil
	},
}

var offersStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set an offer's negotiation status",
	Long:  `Valid statuses: Draft, "Offer Sent", "In Talks", "Offer Accepted", "Offer Declined". Accepting an offer moves its listing to Under Contract.`,
	Args:  cobra.ExactArgs(2),
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
		o, err := svc.SetOfferStatus(ctx, scope, args[0], model.OfferStatus(args[1]))
		if err != nil {
			return err
		}
		cmd.Printf("offer from %s is now %s\n", o.BuyerName, o.Status)
		return nil
	},
}

var offersSummarizeCmd = &cobra.Command{
	Use:   "summarize <id>",
	Short: "AI summary of an offer's terms",
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
		summary, err := svc.SummarizeOffer(ctx, scope, args[0])
		if err != nil {
			return err
		}
		if summary == "" {
			cmd.Println("summary unavailable (no AI key configured, or the model did not answer)")
			return nil
		}
		cmd.Println(summary)
		return nil
	},
}

func init() {
	offersCreateCmd.Flags().StringVar(&offerBuyer, "buyer", "", "buyer name (required)")
	offersCreateCmd.Flags().StringVar(&offerAddress, "address", "", "property address, matched against listings")
	offersCreateCmd.Flags().Float64Var(&offerPrice, "price", 0, "offer price")
	offersCreateCmd.Flags().Float64Var(&offerDown, "down", 0, "down payment")
	offersCreateCmd.Flags().Float64Var(&offerEarnest, "earnest", 0, "earnest money deposit")
	offersCreateCmd.Flags().StringVar(&offerFinancing, "financing", "", "Cash, Conventional, FHA, or VA")
	offersCreateCmd.Flags().IntVar(&offerInspection, "inspection", 0, "inspection period in days")
	offersCreateCmd.Flags().StringSliceVar(&offerContingencies, "contingency", nil, "contingency (repeatable)")
	offersCreateCmd.Flags().StringVar(&offerClosing, "closing", "", "target closing date")
	_ = offersCreateCmd.MarkFlagRequired("buyer")

	offersCmd.AddCommand(offersListCmd, offersCreateCmd, offersStatusCmd, offersSummarizeCmd)
	rootCmd.AddCommand(offersCmd)
}
