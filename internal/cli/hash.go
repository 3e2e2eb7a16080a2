package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"earnings-ledger/internal/util"
)

// NewHashPasscodeCommand creates the hash-passcode command.
func NewHashPasscodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-passcode <passcode>",
		Short: "Print a bcrypt hash for security.passcode_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := util.HashPasscode(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "hash passcode", err)
			}
			return rootOpts.formatter(cmd).Success(map[string]string{"hash": hash}, func(w io.Writer) {
				fmt.Fprintln(w, hash)
			})
		},
	}
}
