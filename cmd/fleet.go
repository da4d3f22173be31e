package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/catering/core/model"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered vehicles",
	RunE:  runFleetLs,
}

var (
	addCount int
	addType  string
)

var fleetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register more vehicles, up to the fleet limit",
	RunE:  runFleetAdd,
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Forget the fleet and register the configured number of vehicles again",
	RunE:  runReload,
}

func init() {
	fleetAddCmd.Flags().IntVar(&addCount, "count", 1, "number of vehicles")
	fleetAddCmd.Flags().StringVar(&addType, "type", "", "vehicle type, defaults to the service setting")
	fleetCmd.AddCommand(fleetLsCmd, fleetAddCmd)
	rootCmd.AddCommand(fleetCmd, reloadCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	var vehicles []model.VehicleSnapshot
	if err := call(cmd, "GET", "/vehicles", nil, &vehicles); err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VEHICLE\tSTATUS\tBASE\tCURRENT")
	for _, v := range vehicles {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.VehicleID, v.Status, v.BaseNode, v.CurrentNode)
	}
	return w.Flush()
}

type registered struct {
	Registered int `json:"registered"`
}

func runFleetAdd(cmd *cobra.Command, args []string) error {
	var res registered
	body := map[string]any{"count": addCount, "type": addType}
	if err := call(cmd, "POST", "/admin/vehicles", body, &res); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "registered %d vehicles\n", res.Registered)
	return err
}

func runReload(cmd *cobra.Command, args []string) error {
	var res registered
	if err := call(cmd, "POST", "/admin/reload", nil, &res); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "fleet reloaded with %d vehicles\n", res.Registered)
	return err
}
