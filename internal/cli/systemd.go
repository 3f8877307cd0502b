package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shellgate/internal/systemd"
)

func init() {
	systemdCmd.AddCommand(systemdUnitCmd)
	systemdCmd.AddCommand(systemdRecordHashCmd)
	rootCmd.AddCommand(systemdCmd)
}

var systemdCmd = &cobra.Command{
	Use:   "systemd",
	Short: "Systemd integration helpers",
}

var systemdUnitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Print the daemon unit file",
	Long:  "Prints the shellgate.service unit template to stdout. Pipe to\n/etc/systemd/system/shellgate.service and run systemctl daemon-reload.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(systemd.DaemonTemplate())
	},
}

var systemdRecordHashCmd = &cobra.Command{
	Use:   "record-hash",
	Short: "Record the installed unit file hash",
	Long:  "Hashes the installed unit file and stores the baseline so the daemon\ncan warn when the unit file changes after installation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := systemd.RecordUnitFileHash(); err != nil {
			return err
		}
		fmt.Println("unit file hash recorded")
		return nil
	},
}
