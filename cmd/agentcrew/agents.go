package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the registered agents and their capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		crew, cleanup, err := buildCrew()
		if err != nil {
			return err
		}
		defer cleanup()

		agents := crew.Agents()
		sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })

		nameLabel := color.New(color.FgMagenta, color.Bold)
		for _, a := range agents {
			caps := make([]string, len(a.Capabilities))
			for i, c := range a.Capabilities {
				caps[i] = c.String()
			}
			nameLabel.Printf("%s\n", a.Name)
			fmt.Printf("  %s\n", a.Description)
			color.Cyan("  capabilities: %s", strings.Join(caps, ", "))
		}

		color.White("\nRouting table:")
		table := crew.RoutingTable()
		kinds := make([]string, 0, len(table))
		for kind := range table {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("  %-24s -> %s\n", kind, table[kind])
		}
		return nil
	},
}
