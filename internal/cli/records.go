package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/store"
)

type RecordsListCmd struct {
	User string `help:"Only show records linked to this user id."`
}

func (cmd *RecordsListCmd) Run(ctx *Context) error {
	bg := context.Background()
	db, err := ctx.openDB(bg)
	if err != nil {
		return err
	}
	defer db.Close()

	history := store.NewHistory(db, ctx.Config.History.MaxRecords)
	var records []models.AdminRecord
	if cmd.User != "" {
		records, err = history.ListByUser(bg, cmd.User)
	} else {
		records, err = history.ListAll(bg)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(ctx.Out, "No records found.")
		return nil
	}
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tNAME\tGOAL\tWEEK\tSUMMARY")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Timestamp.Local().Format("2006-01-02 15:04"), r.User.Name, r.User.Goal, r.Plan.WeekNumber, r.PlanSummary)
	}
	return w.Flush()
}

type RecordsClearCmd struct {
	Yes bool `help:"Confirm deleting every record." short:"y"`
}

func (cmd *RecordsClearCmd) Run(ctx *Context) error {
	if !cmd.Yes {
		return errors.New("refusing to delete all records without --yes")
	}
	bg := context.Background()
	db, err := ctx.openDB(bg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.NewHistory(db, 0).ClearAll(bg); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "All records cleared.")
	return nil
}
