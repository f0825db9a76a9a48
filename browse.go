package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"median/listview"
	"median/refcheck"
	"median/views"
)

const browseHelp = `commands:
  show                     print results, or the open item
  search <text>            set search text
  sort <column>            cycle the sort on column
  sort+ <column>           cycle column as an extra sort key
  filter <key> <a,b|on|off>
  filter clear
  select <id>              open an item
  new                      open a blank item
  set <key>=<json|text>    edit the open item
  undo                     discard edits
  save                     write the open item
  delete                   ask to delete the open item
  confirm                  confirm the delete
  cancel                   cancel the delete
  close                    close the open item
  quit`

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <entity>",
		Short: "Interactively search, sort, edit and delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cliStore(cmd, opts)
			if err != nil {
				return err
			}
			cmds, err := lookupEntity(s, args[0])
			if err != nil {
				return err
			}
			return cmds.browse(cmd.InOrStdin(), cmd.OutOrStdout(), opts.noColor)
		},
	}
}

func browse[T any](page views.Page[T], logger *zap.Logger, in io.Reader, out io.Writer, noColor bool) error {
	green, red, cyan := color.New(color.FgGreen), color.New(color.FgRed), color.New(color.FgCyan)
	if noColor {
		green.DisableColor()
		red.DisableColor()
		cyan.DisableColor()
	}

	cfg := page.Config(logger)
	cfg.Notify = func(n listview.Notification) {
		if n.Kind == listview.NotifyError {
			red.Fprintln(out, "✗", n.Message)
			return
		}
		green.Fprintln(out, "✓", n.Message)
	}
	view := listview.New(cfg)

	showResults := func() {
		rows := page.Query("", listview.Query{Text: view.Query(), Filters: view.Filters(), Sorts: view.Sorts()})
		renderTable(out, append([]string{"ID"}, page.Headers()...), withIDs(page, rows), noColor)
		fmt.Fprintf(out, "%d %s", len(rows), page.Entity)
		if n := view.ActiveFilterCount(); n > 0 {
			fmt.Fprintf(out, ", %d filters active", n)
		}
		if sort := listview.SerializeSort(view.Sorts()); sort != "" {
			fmt.Fprintf(out, ", sort %s", sort)
		}
		fmt.Fprintln(out)
	}

	showItem := func() {
		item, ok := view.EditedItem()
		if !ok {
			showResults()
			return
		}
		body, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			red.Fprintln(out, err)
			return
		}
		fmt.Fprintln(out, string(body))
		for key, msg := range view.ValidationErrors() {
			red.Fprintf(out, "  %s: %s\n", key, msg)
		}
		if view.HasChanges() {
			cyan.Fprintln(out, "(unsaved changes)")
		}
		if view.ShowDeleteConfirm() {
			cyan.Fprintln(out, "delete? type confirm or cancel")
		}
	}

	showResults()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		command, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch command {
		case "":
		case "help", "?":
			fmt.Fprintln(out, browseHelp)
		case "quit", "exit":
			return nil
		case "show":
			showItem()
		case "search":
			view.SetQuery(arg)
			showResults()
		case "sort", "sort+":
			if arg == "" {
				red.Fprintln(out, "sort needs a column")
				continue
			}
			view.HandleSort(arg, command == "sort+")
			showResults()
		case "filter":
			if err := applyFilter(view, arg); err != nil {
				red.Fprintln(out, err)
				continue
			}
			showResults()
		case "select":
			item, err := page.Get(arg)
			if err != nil {
				red.Fprintln(out, err)
				continue
			}
			view.SelectItem(item)
			showItem()
		case "new":
			if page.Create == nil {
				red.Fprintln(out, views.ErrReadOnly)
				continue
			}
			view.StartCreate(page.Blank())
			showItem()
		case "set":
			if err := setField(view, arg); err != nil {
				red.Fprintln(out, err)
				continue
			}
			showItem()
		case "undo":
			view.Undo()
			showItem()
		case "save":
			if view.Save() {
				showItem()
			} else {
				for key, msg := range view.ValidationErrors() {
					red.Fprintf(out, "  %s: %s\n", key, msg)
				}
			}
		case "delete":
			view.RequestDelete()
			showItem()
		case "confirm":
			if !view.ConfirmDelete() {
				if result, ok := view.LastDeleteResult(); ok && len(result.References) > 0 {
					cyan.Fprintln(out, strings.TrimRight(refcheck.Tooltip(result.References), "\n"))
				}
			}
		case "cancel":
			view.CancelDelete()
		case "close":
			view.Close()
			showResults()
		default:
			red.Fprintf(out, "unknown command %q, try help\n", command)
		}
	}
}

func withIDs[T any](page views.Page[T], rows []listview.Row[T]) [][]string {
	table := page.Table(rows)
	for i, row := range rows {
		table[i] = append([]string{page.ID(row.Item)}, table[i]...)
	}
	return table
}

func applyFilter[T any](view *listview.ListView[T], arg string) error {
	if arg == "clear" {
		view.ClearFilters()
		return nil
	}
	key, value, ok := strings.Cut(arg, " ")
	if !ok {
		return fmt.Errorf("usage: filter <key> <a,b|on|off>")
	}
	switch value = strings.TrimSpace(value); value {
	case "on":
		view.SetFilter(key, listview.FilterValue{Enabled: true})
	case "off":
		view.SetFilter(key, listview.FilterValue{})
	default:
		var selected []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				selected = append(selected, v)
			}
		}
		view.SetFilter(key, listview.FilterValue{Selected: selected})
	}
	return nil
}

// setField edits one JSON key of the open item. Values that parse as JSON
// are used as is, anything else is taken as a string.
func setField[T any](view *listview.ListView[T], arg string) error {
	key, raw, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("usage: set <key>=<value>")
	}
	if _, open := view.EditedItem(); !open {
		return fmt.Errorf("nothing selected")
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}

	var editErr error
	view.Edit(func(draft *T) {
		doc := map[string]any{}
		body, err := json.Marshal(draft)
		if err == nil {
			err = json.Unmarshal(body, &doc)
		}
		if err != nil {
			editErr = err
			return
		}
		doc[key] = value
		if body, err = json.Marshal(doc); err != nil {
			editErr = err
			return
		}
		var next T
		if err := json.Unmarshal(body, &next); err != nil {
			editErr = fmt.Errorf("cannot set %s: %w", key, err)
			return
		}
		*draft = next
	})
	return editErr
}
