package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/controller"
	"github.com/tessro/roam/internal/outline"
	"github.com/tessro/roam/internal/registry"
	"github.com/tessro/roam/internal/tui"
	"github.com/tessro/roam/internal/view"
)

// markdownWidth is the wrap width for plans printed to a terminal.
const markdownWidth = 80

// newDocumentCmd builds the list, show, and delete subcommands shared by
// every document kind.
func newDocumentCmd(kind api.Kind, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	var listOutput string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + kind.Noun() + "s",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentList(cmd, kind, listOutput)
		},
	}
	addOutputFlag(listCmd, &listOutput)

	var showOutput string
	showCmd := &cobra.Command{
		Use:   "show <filename>",
		Short: "Print a " + kind.Noun(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentShow(cmd, kind, args[0], showOutput)
		},
	}
	addOutputFlag(showCmd, &showOutput)

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete a " + kind.Noun(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentDelete(cmd, kind, args[0], yes)
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(listCmd, showCmd, deleteCmd)
	return cmd
}

// refreshErr picks the failure for one kind out of a refresh.
func refreshErr(res registry.RefreshResult, kind api.Kind) error {
	switch kind {
	case api.KindPlan:
		return res.Plans
	case api.KindTodo:
		return res.Todos
	case api.KindBudget:
		return res.Budgets
	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}
}

func runDocumentList(cmd *cobra.Command, kind api.Kind, format string) error {
	if err := validOutput(format); err != nil {
		return err
	}
	a, err := getApp()
	if err != nil {
		return err
	}
	if err := refreshErr(a.ctrl.Refresh(cmd.Context()), kind); err != nil {
		return fmt.Errorf("list %ss: %w", kind.Noun(), err)
	}

	st := a.ctrl.State()
	out := cmd.OutOrStdout()
	if format != outputTable {
		switch kind {
		case api.KindPlan:
			return writeStructured(out, format, nonNil(st.Plans))
		case api.KindTodo:
			return writeStructured(out, format, nonNil(st.Todos))
		default:
			return writeStructured(out, format, nonNil(st.Budgets))
		}
	}

	rows := 0
	w := newTable(out)
	switch kind {
	case api.KindPlan:
		rows = len(st.Plans)
		_, _ = fmt.Fprintln(w, "FILENAME\tDESTINATION\tCREATED")
		for _, p := range st.Plans {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Filename, cell(p.Destination), view.Date(p.Created, time.Time{}))
		}
	case api.KindTodo:
		rows = len(st.Todos)
		_, _ = fmt.Fprintln(w, "FILENAME\tTITLE\tDONE\tCREATED")
		for _, t := range st.Todos {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", t.Filename, cell(t.Title), t.CompletedCount, t.ItemCount, view.Date(t.Created, time.Time{}))
		}
	case api.KindBudget:
		rows = len(st.Budgets)
		_, _ = fmt.Fprintln(w, "FILENAME\tTITLE\tITEMS\tTOTAL\tCREATED")
		for _, b := range st.Budgets {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", b.Filename, cell(b.Title), b.ItemCount, view.Money(b.TotalAmount), view.Date(b.Created, time.Time{}))
		}
	}
	if rows == 0 {
		_, _ = fmt.Fprintln(out, view.EmptyListHint(kind))
		return nil
	}
	return w.Flush()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// openDocument opens filename through the controller and returns it.
func openDocument(cmd *cobra.Command, ctrl *controller.Controller, kind api.Kind, filename string) (registry.Current, error) {
	if err := ctrl.SelectDocument(cmd.Context(), kind, filename); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return registry.Current{}, fmt.Errorf("%s %s not found", kind.Noun(), filename)
		}
		return registry.Current{}, fmt.Errorf("open %s %s: %w", kind.Noun(), filename, err)
	}
	return ctrl.State().Current, nil
}

func runDocumentShow(cmd *cobra.Command, kind api.Kind, filename, format string) error {
	if err := validOutput(format); err != nil {
		return err
	}
	a, err := getApp()
	if err != nil {
		return err
	}
	cur, err := openDocument(cmd, a.ctrl, kind, filename)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == outputTable {
		return printDocument(out, cur)
	}
	switch kind {
	case api.KindPlan:
		return writeStructured(out, format, cur.Plan)
	case api.KindTodo:
		return writeStructured(out, format, cur.Todo)
	default:
		return writeStructured(out, format, cur.Budget)
	}
}

// printDocument writes the open document the way the detail panel shows it.
func printDocument(out io.Writer, cur registry.Current) error {
	screen := view.Select(view.Input{ShowPanel: true, ActiveTab: cur.Type, Current: cur})
	d := screen.Detail
	if d == nil {
		return nil
	}

	_, _ = fmt.Fprintln(out, d.Heading)
	if d.Dates != "" {
		_, _ = fmt.Fprintln(out, d.Dates)
	}
	_, _ = fmt.Fprintln(out)

	switch d.Kind {
	case api.KindPlan:
		rendered, err := tui.RenderMarkdown(d.Content, markdownWidth)
		if err != nil {
			rendered = d.Content
		}
		_, _ = fmt.Fprintln(out, rendered)

	case api.KindTodo:
		_, _ = fmt.Fprintln(out, d.Progress)
		w := newTable(out)
		for _, item := range d.TodoItems {
			box := "[ ]"
			if item.Completed {
				box = "[x]"
			}
			_, _ = fmt.Fprintf(w, "  %s\t%d\t%s\n", box, item.ID, item.Text)
		}
		if err := w.Flush(); err != nil {
			return err
		}

	case api.KindBudget:
		if len(d.BudgetItems) > 0 {
			w := newTable(out)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tAMOUNT")
			for _, item := range d.BudgetItems {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", item.ID, cell(item.Name), view.Money(item.Amount))
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		_, _ = fmt.Fprintf(out, "Total: %s\n", d.Total)
	}

	if d.EmptyHint != "" {
		_, _ = fmt.Fprintln(out, d.EmptyHint)
	}
	return nil
}

// promptConfirmer asks on the command's stdin. Anything but y or yes declines.
func promptConfirmer(cmd *cobra.Command) controller.Confirmer {
	return controller.ConfirmFunc(func(kind api.Kind, filename string) bool {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Delete %s %s? [y/N] ", kind.Noun(), filename)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

func runDocumentDelete(cmd *cobra.Command, kind api.Kind, filename string, yes bool) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	confirm := promptConfirmer(cmd)
	if yes || !a.cfg.GetConfirmDeletes() {
		confirm = controller.AlwaysConfirm
	}

	out := cmd.OutOrStdout()
	err = a.ctrl.DeleteDocument(cmd.Context(), kind, filename, confirm)
	if errors.Is(err, controller.ErrDeclined) {
		_, _ = fmt.Fprintln(out, "Cancelled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind.Noun(), filename, err)
	}
	_, _ = fmt.Fprintf(out, "Deleted %s %s\n", kind.Noun(), filename)
	return nil
}

var (
	plansCmd   = newDocumentCmd(api.KindPlan, "plans", "Browse travel plans")
	todosCmd   = newDocumentCmd(api.KindTodo, "todos", "Browse and check off todo lists")
	budgetsCmd = newDocumentCmd(api.KindBudget, "budgets", "Browse and edit budgets")
)

var planExportOut string

var planExportCmd = &cobra.Command{
	Use:   "export <filename>",
	Short: "Export a travel plan as a standalone HTML page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanExport,
}

func runPlanExport(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	cur, err := openDocument(cmd, a.ctrl, api.KindPlan, args[0])
	if err != nil {
		return err
	}

	page, err := outline.HTML(cur.Plan.Destination+" Travel Plan", cur.Plan.Content)
	if err != nil {
		return err
	}
	if planExportOut == "" || planExportOut == "-" {
		_, err = cmd.OutOrStdout().Write(page)
		return err
	}
	if err := os.WriteFile(planExportOut, page, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", planExportOut, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", planExportOut)
	return nil
}

func parseItemID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}

func newTodoToggleCmd(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <filename> <item-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[1])
			if err != nil {
				return err
			}
			a, err := getApp()
			if err != nil {
				return err
			}
			if _, err := openDocument(cmd, a.ctrl, api.KindTodo, args[0]); err != nil {
				return err
			}
			if err := a.ctrl.ToggleTodoItem(cmd.Context(), id, completed); err != nil {
				return err
			}
			return printDocument(cmd.OutOrStdout(), a.ctrl.State().Current)
		},
	}
}

var (
	budgetSetName   string
	budgetSetAmount float64
)

var budgetSetCmd = &cobra.Command{
	Use:   "set <filename> <item-id>",
	Short: "Rename or re-price a budget item",
	Long:  "Change a budget item's name, amount, or both. Flags left unset keep the current value.",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetSet,
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	id, err := parseItemID(args[1])
	if err != nil {
		return err
	}
	nameSet := cmd.Flags().Changed("name")
	amountSet := cmd.Flags().Changed("amount")
	if !nameSet && !amountSet {
		return errors.New("nothing to change: pass --name, --amount, or both")
	}

	a, err := getApp()
	if err != nil {
		return err
	}
	cur, err := openDocument(cmd, a.ctrl, api.KindBudget, args[0])
	if err != nil {
		return err
	}

	var item *api.BudgetItem
	for i := range cur.Budget.Items {
		if cur.Budget.Items[i].ID == id {
			item = &cur.Budget.Items[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("budget %s has no item %d", args[0], id)
	}

	name, amount := item.Name, item.Amount
	if nameSet {
		name = strings.TrimSpace(budgetSetName)
		if name == "" {
			return errors.New("--name must not be blank")
		}
	}
	if amountSet {
		amount = budgetSetAmount
	}

	if err := a.ctrl.UpdateBudgetItem(cmd.Context(), id, name, amount); err != nil {
		return err
	}
	return printDocument(cmd.OutOrStdout(), a.ctrl.State().Current)
}

func init() {
	planExportCmd.Flags().StringVar(&planExportOut, "out", "", "write the page to this file instead of stdout")
	plansCmd.AddCommand(planExportCmd)

	todosCmd.AddCommand(
		newTodoToggleCmd("check", "Mark a todo item done", true),
		newTodoToggleCmd("uncheck", "Mark a todo item not done", false),
	)

	budgetSetCmd.Flags().StringVar(&budgetSetName, "name", "", "new item name")
	budgetSetCmd.Flags().Float64Var(&budgetSetAmount, "amount", 0, "new item amount")
	budgetsCmd.AddCommand(budgetSetCmd)

	rootCmd.AddCommand(plansCmd, todosCmd, budgetsCmd)
}
