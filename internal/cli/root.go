package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the quicktalk command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quicktalk",
		Short: "Record and share clips of up to ten seconds",
		Long: `QuickTalk records short audio or video clips, uploads them to object
storage, and shows a rolling 24-hour feed you can reply to. No account is
required: publishing without signing in creates an anonymous identity.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewLoginCommand())
	cmd.AddCommand(NewLogoutCommand())
	cmd.AddCommand(NewRecordCommand())
	cmd.AddCommand(NewReplyCommand())
	cmd.AddCommand(NewFeedCommand())

	return cmd
}
