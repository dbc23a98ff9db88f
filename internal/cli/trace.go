package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bitshub/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Limit  int
	Action string // optional - filter to specific action
}

// TraceResult holds the journal excerpt.
type TraceResult struct {
	Entries []store.JournalEntry `json:"entries"`
	Stats   TraceStats           `json:"stats"`
}

// TraceStats holds summary statistics for the excerpt.
type TraceStats struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the action journal",
		Long: `Show the most recent journaled actions, oldest first.

Every dispatched action is journaled with its outcome and rejection code.
Passwords are redacted before they are written.

Examples:
  bitshub trace --db ./bitshub.db
  bitshub trace --limit 20 --action place_order
  bitshub trace --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "number of entries (0 for all)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to a specific action name")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The journal is read as stored, so no rehydration is needed.
	path, err := databasePath(opts.RootOptions)
	if err != nil {
		return err
	}
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	entries, err := st.ReadJournal(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := TraceResult{Entries: make([]store.JournalEntry, 0, len(entries))}
	for _, e := range entries {
		if opts.Action != "" && e.Action != opts.Action {
			continue
		}
		result.Entries = append(result.Entries, e)
		result.Stats.Total++
		if e.Outcome == store.OutcomeRejected {
			result.Stats.Rejected++
		} else {
			result.Stats.Accepted++
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: w}
		return f.Success(result)
	}

	if len(result.Entries) == 0 {
		fmt.Fprintln(w, "No journal entries.")
		return nil
	}
	for _, e := range result.Entries {
		line := fmt.Sprintf("%6d  %s  %-22s %s", e.Seq, e.RecordedAt.Format("2006-01-02 15:04:05"), e.Action, e.Outcome)
		if e.Code != "" {
			line += " " + e.Code
		}
		fmt.Fprintln(w, line)
		if opts.Verbose {
			fmt.Fprintf(w, "        %s\n", e.Payload)
		}
	}
	fmt.Fprintf(w, "\n%d entries: %d accepted, %d rejected\n",
		result.Stats.Total, result.Stats.Accepted, result.Stats.Rejected)
	return nil
}

// databasePath resolves the database from --db or the config.
func databasePath(opts *RootOptions) (string, error) {
	if opts.Database != "" {
		return opts.Database, nil
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return "", err
	}
	return cfg.Storage.Path, nil
}
