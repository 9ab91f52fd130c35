package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/serialcore/uartcore/enumerator"
)

func newListCmd() *cobra.Command {
	var detailed bool
	var probe bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !detailed {
				ports, err := serialListPorts()
				if err != nil {
					return err
				}
				for _, p := range ports {
					fmt.Println(p)
				}
				return nil
			}

			var (
				infos []*enumerator.PortDetails
				err   error
			)
			if probe {
				infos, err = enumerator.LivePortsList(200 * time.Millisecond)
			} else {
				infos, err = enumerator.GetDetailedPortsList()
			}
			if err != nil {
				return err
			}
			for _, p := range infos {
				fmt.Printf("%s\n", p.Name)
				if p.IsUSB {
					fmt.Printf("  USB ID     %s:%s\n", p.VID, p.PID)
					fmt.Printf("  USB serial %s\n", p.SerialNumber)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "include USB VID/PID/serial where available")
	cmd.Flags().BoolVar(&probe, "probe", false, "filter to ports that respond to a readiness probe right now")
	return cmd
}

func serialListPorts() ([]string, error) {
	m := newManager()
	return m.ListPorts()
}
