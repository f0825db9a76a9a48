package main

import (
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"median/config"
	"median/listview"
	"median/store"
	"median/views"
)

// entityCommands runs the terminal commands for one collection.
type entityCommands struct {
	list   func(w io.Writer, namespace string, values url.Values, noColor bool) int
	browse func(in io.Reader, out io.Writer, noColor bool) error
}

func bind[T any](page views.Page[T], logger *zap.Logger) entityCommands {
	return entityCommands{
		list: func(w io.Writer, namespace string, values url.Values, noColor bool) int {
			rows := page.Query(namespace, page.ParseQuery(values))
			renderTable(w, page.Headers(), page.Table(rows), noColor)
			return len(rows)
		},
		browse: func(in io.Reader, out io.Writer, noColor bool) error {
			return browse(page, logger, in, out, noColor)
		},
	}
}

func entities(s *store.Store) map[string]entityCommands {
	logger := s.Logger()
	return map[string]entityCommands{
		"namespaces": bind(views.Namespaces(s), logger),
		"types":      bind(views.Types(s), logger),
		"validators": bind(views.Validators(s), logger),
		"fields":     bind(views.Fields(s), logger),
		"objects":    bind(views.Objects(s), logger),
		"endpoints":  bind(views.Endpoints(s), logger),
		"tags":       bind(views.Tags(s), logger),
	}
}

func lookupEntity(s *store.Store, name string) (entityCommands, error) {
	all := entities(s)
	cmds, ok := all[name]
	if !ok {
		known := slices.Sorted(maps.Keys(all))
		return entityCommands{}, fmt.Errorf("unknown entity %q (known: %s)", name, strings.Join(known, ", "))
	}
	return cmds, nil
}

// listQuery turns command flags into the URL form the list pages parse.
func listQuery(text, sort string, filters []string) (url.Values, error) {
	values := url.Values{}
	if text != "" {
		values.Set(listview.SearchParam, text)
	}
	if sort != "" {
		values.Set(listview.SortParam, sort)
	}
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=a,b", f)
		}
		values.Set("filter["+strings.TrimSpace(key)+"]", value)
	}
	return values, nil
}

// cliStore loads the store the same way serve does, logging warnings only.
func cliStore(cmd *cobra.Command, opts *rootOptions) (*store.Store, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logCfg := cfg.Log
	if logCfg.Level != "debug" {
		logCfg.Level = "warn"
	}
	logger, err := config.NewLogger(logCfg)
	if err != nil {
		logger = zap.NewNop()
	}
	return loadStore(cmd.Context(), cfg, logger)
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		text      string
		sort      string
		namespace string
		filters   []string
	)

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Print a collection as a table",
		Example: `  median list fields --sort type:asc,name:desc
  median list fields --filter type=str,int --namespace ns-billing
  median list validators --q length`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := listQuery(text, sort, filters)
			if err != nil {
				return err
			}
			s, err := cliStore(cmd, opts)
			if err != nil {
				return err
			}
			cmds, err := lookupEntity(s, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			n := cmds.list(out, namespace, values, opts.noColor)
			fmt.Fprintf(out, "\n%d %s\n", n, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "q", "", "search text")
	cmd.Flags().StringVar(&sort, "sort", "", "sort order, e.g. name:asc,type:desc")
	cmd.Flags().StringVar(&namespace, "namespace", "", "only items in this namespace")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as key=a,b (repeatable)")
	return cmd
}
