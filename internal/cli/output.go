package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dexhub/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printCreatureTable prints creatures in a human-readable table.
func printCreatureTable(w io.Writer, creatures []types.Creature) {
	if len(creatures) == 0 {
		fmt.Fprintln(w, "No creatures found.")
		return
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPES\tVERSION")
	fmt.Fprintln(tw, "--\t----\t-----\t-------")
	for _, c := range creatures {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", c.ID, c.Name, joinTags(c.Types), c.Version)
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(w, "Total: %d creature(s)\n", len(creatures))
}

func printCreature(w io.Writer, c *types.Creature) {
	fmt.Fprintf(w, "ID:       %d\n", c.ID)
	fmt.Fprintf(w, "Name:     %s\n", c.Name)
	fmt.Fprintf(w, "Types:    %s\n", joinTags(c.Types))
	fmt.Fprintf(w, "Image:    %s\n", c.Image.URL)
	fmt.Fprintf(w, "Version:  %d\n", c.Version)
}

func joinTags(tags []types.TypeTag) string {
	if len(tags) == 0 {
		return "-"
	}
	s := make([]string, len(tags))
	for i, t := range tags {
		s[i] = string(t)
	}
	return strings.Join(s, ",")
}

// parseIDArg parses a positive creature identifier.
func parseIDArg(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, raw)
	}
	return id, nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}
