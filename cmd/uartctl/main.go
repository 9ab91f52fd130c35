// Command uartctl is a small CLI around the uartcore Manager Façade: list
// and inspect ports, open/configure one as a connectivity check, watch for
// incoming data and modem-line events, push/pull raw bytes or an XMODEM
// transfer, and drive the RTS/DTR modem-control lines — all against the
// same handle-oriented API embedders use directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	serial "github.com/serialcore/uartcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uartctl",
		Short: "Inspect and drive serial ports through uartcore",
	}

	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	viper.SetEnvPrefix("UARTCTL")
	viper.AutomaticEnv()

	root.AddCommand(newListCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newOpenCmd())
	root.AddCommand(newMonitorCmd())
	root.AddCommand(newSendCmd())
	root.AddCommand(newReceiveCmd())
	root.AddCommand(newRTSCmd())
	root.AddCommand(newDTRCmd())
	root.AddCommand(newXmodemSendCmd())
	root.AddCommand(newXmodemReceiveCmd())
	return root
}

func newManager() *serial.Manager {
	m := serial.NewManager()
	if viper.GetBool("verbose") {
		logger, _ := zap.NewDevelopment()
		m.SetLogger(serial.NewZapLogger(logger.Sugar()))
	}
	return m
}
