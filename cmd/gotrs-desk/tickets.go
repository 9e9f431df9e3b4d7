package main

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/gotrs-desk/internal/models"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Ticket listing commands",
}

var listReq models.TicketListRequest

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets visible to an agent as JSON",
	Example: `  gotrs-desk tickets list --company 1 --user 4 --show-all --search silva
  gotrs-desk tickets list --company 1 --user 4 --tags 3,5 --page 2`,
	RunE: runTicketsList,
}

func init() {
	f := ticketsListCmd.Flags()
	f.UintVar(&listReq.CompanyID, "company", 0, "Company id of the caller")
	f.UintVar(&listReq.UserID, "user", 0, "User id of the caller")
	f.StringVar(&listReq.SearchParam, "search", "", "Substring matched against contact name, number and message bodies")
	f.StringVar(&listReq.PageNumber, "page", "1", "Page number")
	f.StringVar(&listReq.Status, "status", "", "Ticket status")
	f.StringVar(&listReq.Date, "date", "", "Creation day (YYYY-MM-DD)")
	f.StringVar(&listReq.DateStart, "date-start", "", "First day of the update range")
	f.StringVar(&listReq.DateEnd, "date-end", "", "Last day of the update range")
	f.StringVar(&listReq.UpdatedAt, "updated-at", "", "Update day (YYYY-MM-DD)")
	f.Bool("show-all", false, "Drop the pending restriction for administrators")
	f.Bool("unread", false, "Only tickets with unread messages")
	f.Bool("group", false, "Filter on the group flag")
	f.UintSliceVar(&listReq.QueueIDs, "queues", nil, "Queue ids")
	f.UintSliceVar(&listReq.Tags, "tags", nil, "Tag ids, every one required")
	f.UintSliceVar(&listReq.Users, "users", nil, "Assigned agent ids")
	f.UintSliceVar(&listReq.Contacts, "contacts", nil, "Contact ids")
	f.UintSliceVar(&listReq.Connections, "connections", nil, "Whatsapp connection ids")

	ticketsCmd.AddCommand(ticketsListCmd)
}

// boolFlag returns the flag value as the listing expects it, or "" when the
// flag was not given.
func boolFlag(cmd *cobra.Command, name string) string {
	if !cmd.Flags().Changed(name) {
		return ""
	}
	v, _ := cmd.Flags().GetBool(name)
	return strconv.FormatBool(v)
}

func runTicketsList(cmd *cobra.Command, args []string) error {
	if listReq.CompanyID == 0 || listReq.UserID == 0 {
		return errors.New("--company and --user are required")
	}
	req := listReq
	req.ShowAll = boolFlag(cmd, "show-all")
	req.WithUnreadMessages = boolFlag(cmd, "unread")
	req.IsGroup = boolFlag(cmd, "group")

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.openDatabase(cmd.Context()); err != nil {
		return err
	}
	svc, err := a.listingService(nil)
	if err != nil {
		return err
	}

	resp, err := svc.ListTickets(cmd.Context(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
