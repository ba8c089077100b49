package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/estatepulse/crm-cli/internal/model"
)

var (
	contactName  string
	contactPhone string
	contactEmail string
	contactTags  []string
	contactNotes string
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage agency contacts",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts visible to the acting user",
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
		contacts, err := st.ListContacts(ctx, scope)
		if err != nil {
			return err
		}
		for _, c := range contacts {
			line := c.Name
			if c.Phone != "" {
				line += "  " + c.Phone
			}
			if c.Email != "" {
				line += "  " + c.Email
			}
			if len(c.Tags) > 0 {
				line += "  [" + strings.Join(c.Tags, ", ") + "]"
			}
			cmd.Printf("%s  %s\n", c.ID, line)
		}
		cmd.Printf("%d contacts\n", len(contacts))
		return nil
	},
}

var contactsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a contact",
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
		c, err := svc.CreateContact(ctx, scope, model.Contact{
			Name:  contactName,
			Phone: contactPhone,
			Email: contactEmail,
			Tags:  contactTags,
			Notes: contactNotes,
		})
		if err != nil {
			return err
		}
		cmd.Printf("created contact %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

var contactsDeleteCmd = &cobra.Command{
	Use:   "delete <id> [id...]",
	Short: "Delete contacts by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		if err := st.DeleteContacts(ctx, scope.AgencyID, args); err != nil {
			return err
		}
		cmd.Printf("deleted %d contacts\n", len(args))
		return nil
	},
}

func init() {
	contactsAddCmd.Flags().StringVar(&contactName, "name", "", "contact name (required)")
	contactsAddCmd.Flags().StringVar(&contactPhone, "phone", "", "phone number")
	contactsAddCmd.Flags().StringVar(&contactEmail, "email", "", "email address")
	contactsAddCmd.Flags().StringSliceVar(&contactTags, "tag", nil, "tag (repeatable)")
	contactsAddCmd.Flags().StringVar(&contactNotes, "notes", "", "free-form notes")
	_ = contactsAddCmd.MarkFlagRequired("name")

	contactsCmd.AddCommand(contactsListCmd, contactsAddCmd, contactsDeleteCmd)
	rootCmd.AddCommand(contactsCmd)
}
