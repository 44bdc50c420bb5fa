package main

import (
	"github.com/spf13/cobra"

	"github.com/OldRepublicDevs/modsync/internal/domain/ordering"
)

var orderCmd = &cobra.Command{
	Use:   "order <modset-file>",
	Short: "Print the computed install order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		components, err := loadComponents(args[0])
		if err != nil {
			return err
		}

		alreadyOrdered, ordered, err := ordering.ConfirmComponentsInstallOrder(components)
		if err != nil {
			return err
		}

		for i, c := range ordered {
			cmd.Printf("%3d. %s (%s)\n", i+1, c.Name, c.ID)
		}
		if alreadyOrdered {
			cmd.Println("mod set is already in a valid install order")
		} else {
			cmd.Println("mod set was reordered to satisfy install constraints")
		}
		return nil
	},
}
