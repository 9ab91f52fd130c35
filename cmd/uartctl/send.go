package main

import (
	"os"

	"github.com/spf13/cobra"

	serial "github.com/serialcore/uartcore"
)

func newSendCmd() *cobra.Command {
	var baud int

	cmd := &cobra.Command{
		Use:   "send <port> <file>",
		Short: "Write a file's raw bytes to port",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName, path := args[0], args[1]
			m := newManager()

			h, err := m.Open(portName, true, true, true)
			if err != nil {
				return err
			}
			defer m.Close(h)

			if err := m.ConfigureData(h, serial.DataBits8, serial.StopBits1, serial.ParityNone, baud, 0); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			_, err = m.WriteBytes(h, data, 0)
			return err
		},
	}

	cmd.Flags().IntVar(&baud, "baud", serial.Baud9600, "baud rate")
	return cmd
}

func newXmodemSendCmd() *cobra.Command {
	var baud int

	cmd := &cobra.Command{
		Use:   "xmodem-send <port> <file>",
		Short: "Send a file to the peer on port using XMODEM",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName, path := args[0], args[1]
			m := newManager()

			h, err := m.Open(portName, true, true, true)
			if err != nil {
				return err
			}
			defer m.Close(h)

			if err := m.ConfigureData(h, serial.DataBits8, serial.StopBits1, serial.ParityNone, baud, 0); err != nil {
				return err
			}
			return m.SendFile(h, path, serial.XMODEM)
		},
	}

	cmd.Flags().IntVar(&baud, "baud", serial.Baud9600, "baud rate")
	return cmd
}
