package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gtrack/internal/cli"
)

var flagCmd = &cobra.Command{
	Use:   "flag",
	Short: "Manage the boolean flags attached to games",
}

var flagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all defined flags",
	Args:  cobra.NoArgs,
	RunE:  runFlagList,
}

var flagAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Define a new flag, default false for every game",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlagAdd,
}

var flagRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a flag and all of its assignments",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlagRm,
}

func init() {
	flagCmd.AddCommand(flagListCmd)
	flagCmd.AddCommand(flagAddCmd)
	flagCmd.AddCommand(flagRmCmd)
	rootCmd.AddCommand(flagCmd)
}

func runFlagList(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	flags, err := st.Flags()
	if err != nil {
		return err
	}
	if len(flags) == 0 {
		fmt.Println("No flags defined.")
		return nil
	}

	t := cli.Table{
		Headers:   []string{"id", "name"},
		LeftAlign: map[int]bool{1: true},
	}
	for _, f := range flags {
		t.Rows = append(t.Rows, []string{strconv.FormatInt(f.ID, 10), f.Name})
	}
	fmt.Println(cli.RenderTable(t))
	return nil
}

func runFlagAdd(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id, err := st.AddFlag(args[0])
	if err != nil {
		return err
	}
	infof("Created flag %q with id %d", args[0], id)
	return nil
}

func runFlagRm(_ *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid flag id %q", args[0])
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.DeleteFlag(id); err != nil {
		return err
	}
	infof("Deleted flag %d", id)
	return nil
}
