package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bitshub/internal/engine"
)

// DispatchResult is the data payload of an accepted dispatch.
type DispatchResult struct {
	engine.Outcome
}

// String renders the text form: the seq line, then created and redirect.
func (r DispatchResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "seq %d %s ok", r.Seq, r.Action)
	if r.CreatedID != "" {
		fmt.Fprintf(&b, "\n  created: %s", r.CreatedID)
	}
	if r.Redirect != "" {
		fmt.Fprintf(&b, "\n  redirect: %s", r.Redirect)
	}
	return b.String()
}

// rejectionDetails copies the rejection details and adds the redirect, if any.
func rejectionDetails(out engine.Outcome, rej *engine.Rejection) map[string]string {
	if len(rej.Details) == 0 && out.Redirect == "" {
		return nil
	}
	details := make(map[string]string, len(rej.Details)+1)
	for k, v := range rej.Details {
		details[k] = v
	}
	if out.Redirect != "" {
		details["redirect"] = string(out.Redirect)
	}
	return details
}

// NewDispatchCommand creates the dispatch command.
func NewDispatchCommand(rootOpts *RootOptions) *cobra.Command {
	names := engine.ActionNames()
	sort.Strings(names)

	cmd := &cobra.Command{
		Use:   "dispatch <action> [payload]",
		Short: "Apply one action to the persisted storefront",
		Long: fmt.Sprintf(`Rehydrate the storefront, apply one action and persist the result.

The payload is the action's JSON body. A rejected action leaves the
storefront unchanged and exits with code 1.

Actions:
  %s

Examples:
  bitshub dispatch add_to_cart '{"productId":"1"}'
  bitshub dispatch login '{"email":"a@b.com","password":"x"}' --format json
  bitshub dispatch clear_cart`, strings.Join(names, "\n  ")),
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		ValidArgs:     names,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := ""
			if len(args) == 2 {
				payload = args[1]
			}
			return runDispatch(rootOpts, args[0], payload, cmd)
		},
	}

	return cmd
}

func runDispatch(opts *RootOptions, name, payload string, cmd *cobra.Command) error {
	action, err := engine.DecodeAction(name, []byte(payload))
	if err != nil {
		if errors.Is(err, engine.ErrUnknownAction) {
			return WrapExitError(ExitCommandError, "unknown action", err)
		}
		return WrapExitError(ExitCommandError, "invalid payload", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := openRuntime(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	out := rt.Engine.Dispatch(action)

	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		Seq:       out.Seq,
	}

	var rej *engine.Rejection
	if errors.As(out.Err, &rej) {
		message := rej.Message
		if opts.Format != "json" {
			message = fmt.Sprintf("%s rejected: %s", out.Action, rej.Message)
		}
		var details any
		if d := rejectionDetails(out, rej); d != nil {
			details = d
		}
		if err := f.Error(string(rej.Code), message, details); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s rejected: %s", name, rej.Code))
	}

	if err := f.Success(DispatchResult{Outcome: out}); err != nil {
		return err
	}
	writes, failures := rt.Mirror.Stats()
	f.VerboseLog("mirror: %d writes, %d failures", writes, failures)
	return nil
}
