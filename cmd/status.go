package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yad2watch/yad2watch/internal/state"
)

// newStatusCmd creates the 'status' subcommand, which prints a summary of the
// persisted monitor state without touching the network.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Prints the stored monitor state",
		RunE:  runStatusCommand,
	}
}

func runStatusCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}

	store := state.New(rt.cfg.State.Path, rt.logger)
	st := store.Load()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "State file: %s\n", store.Path())
	fmt.Fprintf(out, "Last total: %d\n", st.LastTotal)

	lastCheck := "never"
	if st.LastCheck != nil {
		lastCheck = *st.LastCheck
	}
	fmt.Fprintf(out, "Last check: %s\n", lastCheck)
	fmt.Fprintf(out, "History:    %d entries\n", len(st.History))

	start := len(st.History) - 5
	if start < 0 {
		start = 0
	}
	for _, entry := range st.History[start:] {
		if entry.Change != 0 {
			fmt.Fprintf(out, "  %s  total=%d (%+d)\n", entry.Timestamp, entry.Total, entry.Change)
		} else {
			fmt.Fprintf(out, "  %s  total=%d\n", entry.Timestamp, entry.Total)
		}
	}
	return nil
}
