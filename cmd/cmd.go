package cmd

import (
	"github.com/named-data/ndnrepo/repo"
	"github.com/named-data/ndnrepo/std/utils"
	"github.com/spf13/cobra"
)

const banner = `
  _   _ ____  _   _
 | \ | |  _ \| \ | |_ __ ___ _ __   ___
 |  \| | | | |  \| | '__/ _ \ '_ \ / _ \
 | |\  | |_| | |\  | | |  __/ |_) | (_) |
 |_| \_|____/|_| \_|_|  \___| .__/ \___/
                            |_|
Named Data Networking Data Repository
`

var CmdNDNRepo = &cobra.Command{
	Use:     "ndnrepo",
	Short:   "Named Data Networking Data Repository",
	Long:    banner[1:],
	Version: utils.Version,
}

func init() {
	cobra.EnableCommandSorting = false
	CmdNDNRepo.Root().CompletionOptions.HiddenDefaultCmd = true
	CmdNDNRepo.PersistentFlags().BoolP("help", "h", false, "Print usage")
	CmdNDNRepo.PersistentFlags().Lookup("help").Hidden = true

	CmdNDNRepo.AddGroup(&cobra.Group{ID: "daemons", Title: "NDN Daemons"})
	CmdNDNRepo.AddCommand(cmdRepo())
}

func cmdRepo() *cobra.Command {
	cmdRepo := &cobra.Command{
		Use:   "repo",
		Short: "NDN Data Repository",
		Long: `Named Data Networking Data Repository

All subcommands take the repository configuration file (YAML, or TOML
with a .toml extension) as their first argument.`,
		GroupID: "daemons",
	}

	cmdRepo.AddGroup(&cobra.Group{ID: "run", Title: "NDN Data Repository Daemon"})
	cmdRepo.AddGroup(&cobra.Group{ID: "tools", Title: "Repository Tools"})
	for _, sub := range repo.Cmds() {
		cmdRepo.AddCommand(sub)
	}

	return cmdRepo
}
