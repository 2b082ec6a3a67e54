package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/ifs"
	"github.com/zate/ifsgen/internal/nodegroup"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show the supported transform and iteration ranges",
	RunE:  runLimits,
}

var interfaceCmd = &cobra.Command{
	Use:   "interface",
	Short: "Show the IFS_Generator node group sockets",
	RunE:  runInterface,
}

func init() {
	rootCmd.AddCommand(limitsCmd)
	rootCmd.AddCommand(interfaceCmd)
}

func runLimits(cmd *cobra.Command, args []string) error {
	l := ifs.CurrentLimits()
	if format == "json" {
		return printJSON(l)
	}
	fmt.Printf("Transforms: %d-%d\n", l.MinTransforms, l.MaxTransforms)
	fmt.Printf("Iterations: %d-%d\n", l.MinIterations, l.MaxIterations)
	return nil
}

func runInterface(cmd *cobra.Command, args []string) error {
	sockets := nodegroup.Interface()
	if format == "json" {
		return printJSON(map[string]any{
			"group_name": nodegroup.GroupName,
			"sockets":    sockets,
		})
	}

	fmt.Println(nodegroup.GroupName)
	for _, s := range sockets {
		fmt.Printf("  %-6s %-14s %s", s.InOut, s.Name, s.SocketType)
		if s.Default != nil {
			fmt.Printf(" default=%d", *s.Default)
		}
		if s.Min != nil && s.Max != nil {
			fmt.Printf(" range=%d-%d", *s.Min, *s.Max)
		}
		fmt.Println()
	}
	return nil
}
