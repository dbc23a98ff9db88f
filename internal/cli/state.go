package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bitshub/internal/persist"
	"github.com/roach88/bitshub/internal/server"
)

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state [slice]",
		Short: "Show the persisted storefront",
		Long: `Rehydrate the storefront and print it.

Without an argument a summary is printed (the full view with --format json).
With a slice name (users, current_user, cart, orders, notifications,
products) that slice is printed exactly as it is persisted.

Examples:
  bitshub state
  bitshub state cart
  bitshub state --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slice := ""
			if len(args) == 1 {
				slice = args[0]
			}
			return runState(rootOpts, slice, cmd)
		},
	}

	return cmd
}

func runState(opts *RootOptions, slice string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := openRuntime(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	s := rt.Engine.Snapshot()
	w := cmd.OutOrStdout()

	if slice != "" {
		slices, err := persist.Slices(s)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to serialize state", err)
		}
		data, ok := slices["bitshub_"+slice]
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown slice %q", slice))
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return WrapExitError(ExitFailure, "failed to decode slice", err)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}

	view := server.NewStateView(s, rt.Engine.Seq(), rt.Engine.Now())
	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: w, Seq: view.Seq}
		return f.Success(view)
	}

	session := "(nobody)"
	if u := s.SessionUser(); u != nil {
		session = fmt.Sprintf("%s <%s>", u.FullName, u.Email)
	}
	fmt.Fprintf(w, "Session:       %s\n", session)
	fmt.Fprintf(w, "Products:      %d\n", len(s.Products))
	fmt.Fprintf(w, "Cart:          %d units, total %d\n", s.CartCount(), s.CartTotal())
	fmt.Fprintf(w, "Users:         %d\n", len(s.UserOrder))
	fmt.Fprintf(w, "Orders:        %d\n", len(s.Orders))
	for _, o := range s.Orders {
		fmt.Fprintf(w, "  #%s  %-9s  %d  %s\n", o.ID, o.Status, o.Total, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "Notifications: %d\n", len(s.Notifications))
	return nil
}
