package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/x-govuk/questions/journey"
	"github.com/x-govuk/questions/service"
	"github.com/x-govuk/questions/state"
)

func newRootCmd() *cobra.Command {
	flags := &storeFlags{}

	root := &cobra.Command{
		Use:           "journeyctl",
		Short:         "Inspect journey instance ids and stored journey state",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Enable verbose logging to stderr")

	root.AddCommand(
		newParseCmd(),
		newMintCmd(),
		newListCmd(flags),
		newInspectCmd(flags),
		newDeleteCmd(flags),
	)
	return root
}

type parsedID struct {
	ID          string              `json:"id"`
	Journey     string              `json:"journey"`
	Key         string              `json:"key"`
	RouteValues journey.RouteValues `json:"routeValues"`
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <instance-id>",
		Short: "Parse a canonical instance id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := journey.ParseInstanceID(args[0])
			if err != nil {
				return err
			}

			rv := id.RouteValues()
			delete(rv, journey.KeyRouteValueName)

			return writeJSON(cmd.OutOrStdout(), parsedID{
				ID:          id.String(),
				Journey:     id.JourneyName(),
				Key:         id.Key(),
				RouteValues: rv,
			})
		},
	}
}

func newMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint <journey> [key=value ...]",
		Short: "Mint a new instance id for a journey",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rv := journey.RouteValues{journey.KeyRouteValueName: journey.NewKey()}
			for _, arg := range args[1:] {
				k, v, ok := strings.Cut(arg, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid route value %q: want key=value", arg)
				}
				rv[k] = v
			}

			id, err := journey.NewInstanceID(args[0], rv)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newListCmd(flags *storeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored journey instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := flags.open()
			if err != nil {
				return err
			}
			defer store.Close()

			ids, err := store.Instances(cmd.Context())
			if err != nil {
				return err
			}

			names := make([]string, 0, len(ids))
			for _, id := range ids {
				names = append(names, id.String())
			}
			slices.Sort(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newInspectCmd(flags *storeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <instance-id>",
		Short: "Print the stored state envelope of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := journey.ParseInstanceID(args[0])
			if err != nil {
				return err
			}

			store, err := flags.open()
			if err != nil {
				return err
			}
			defer store.Close()

			raw, err := store.Inspect(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", id, err)
			}
			return writeJSON(cmd.OutOrStdout(), raw)
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd(flags *storeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <instance-id>",
		Short: "Delete a stored instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := journey.ParseInstanceID(args[0])
			if err != nil {
				return err
			}

			store, err := flags.open()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteState(cmd.Context(), id, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// storeFlags selects the store a command operates on. Flag values override
// the config file.
type storeFlags struct {
	config    string
	backend   string
	path      string
	redisAddr string
	verbose   bool
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.config, "config", "", "Path to service config file (JSON or YAML)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "State backend: "+strings.Join(state.Backends(), ", ")+" (overrides config)")
	cmd.Flags().StringVar(&f.path, "path", "", "File backend directory or badger database path (overrides config)")
	cmd.Flags().StringVar(&f.redisAddr, "redis-addr", "", "Redis address host:port (overrides config)")
}

func (f *storeFlags) open() (*state.JSONStore, error) {
	cfg := service.DefaultConfig()
	if f.config != "" {
		loaded, err := service.LoadConfig(f.config)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if f.backend != "" {
		cfg.State.Backend = f.backend
	}
	if f.path != "" {
		cfg.State.Path = f.path
		cfg.State.Badger.Path = f.path
	}
	if f.redisAddr != "" {
		cfg.State.Redis.Addr = f.redisAddr
	}

	if f.verbose {
		cfg.State.Badger.Logger = service.NewLogger(service.LogConfig{Level: "debug"}, os.Stderr).
			With("component", "badger")
	}

	return state.NewStore(&cfg.State, state.NewCodec(state.NewTypeRegistry()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
