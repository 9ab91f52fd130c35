package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serialcore/uartcore/enumerator"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <port>",
		Short: "Print USB VID/PID/serial details for one port, if available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName := args[0]

			infos, err := enumerator.GetDetailedPortsList()
			if err != nil {
				return err
			}
			for _, p := range infos {
				if p.Name != portName {
					continue
				}
				fmt.Printf("%s\n", p.Name)
				if p.IsUSB {
					fmt.Printf("  USB ID       %s:%s\n", p.VID, p.PID)
					fmt.Printf("  USB serial   %s\n", p.SerialNumber)
					fmt.Printf("  Product      %s\n", p.Product)
				} else {
					fmt.Println("  not a USB device (no VID/PID/serial available)")
				}
				return nil
			}
			return fmt.Errorf("uartctl: %s not found", portName)
		},
	}
	return cmd
}
