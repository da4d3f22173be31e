package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/catering/core/model"
)

var (
	reqAircraft string
	reqNode     string
	reqMeals    []string
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Ask the service to cater an aircraft",
	Example: `  catering request --aircraft AF123 --meal Standard=150 --meal Vegan=12
  catering request --aircraft AF123 --node parking_1 --meal Standard=80`,
	RunE: runRequest,
}

func init() {
	requestCmd.Flags().StringVar(&reqAircraft, "aircraft", "", "aircraft identifier")
	requestCmd.Flags().StringVar(&reqNode, "node", "", "delivery point, defaults to the aircraft stand")
	requestCmd.Flags().StringArrayVar(&reqMeals, "meal", nil, "meal order as TYPE=COUNT, repeatable")
	_ = requestCmd.MarkFlagRequired("aircraft")
	_ = requestCmd.MarkFlagRequired("meal")
	rootCmd.AddCommand(requestCmd)
}

func parseMeals(specs []string) ([]model.MealOrder, error) {
	orders := make([]model.MealOrder, 0, len(specs))
	for _, s := range specs {
		name, count, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("meal %q: expected TYPE=COUNT", s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return nil, fmt.Errorf("meal %q: %w", s, err)
		}
		orders = append(orders, model.MealOrder{MealType: strings.TrimSpace(name), Count: n})
	}
	return orders, nil
}

func runRequest(cmd *cobra.Command, args []string) error {
	meals, err := parseMeals(reqMeals)
	if err != nil {
		return err
	}
	req := model.DeliveryRequest{AircraftID: reqAircraft, NodeID: reqNode, Meals: meals}
	var res model.DeliveryResult
	if err := call(cmd, "POST", "/request", req, &res); err != nil {
		return err
	}
	msg := fmt.Sprintf("accepted %d meals for %s", res.TotalMeals, reqAircraft)
	if res.Waiting {
		msg += " (waiting for a free vehicle)"
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
	return err
}
