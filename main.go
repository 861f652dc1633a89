package main

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "nftattr",
		Usage: "Deploy and drive the update-attributes contract on a local ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "~/.mixin/nftattr/config.toml", EnvVars: []string{"NFTATTR_CONFIG"}, Usage: "configuration file path"},
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, EnvVars: []string{"NFTATTR_DATA_DIR"}, Usage: "database directory path, overrides the configuration"},
			&cli.StringFlag{Name: "state", Value: "state.toml", EnvVars: []string{"NFTATTR_STATE"}, Usage: "interactor state file path"},
		},
		Commands: []*cli.Command{
			{
				Name:   "deploy",
				Usage:  "Deploy a new contract owned by the configured owner wallet",
				Action: deployCmd,
			},
			{
				Name:      "fund",
				Usage:     "Credit native currency to an address",
				ArgsUsage: "ADDRESS AMOUNT",
				Action:    fundCmd,
			},
			{
				Name:  "issue",
				Usage: "Issue the contract token collection",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Value: "Whatever", Usage: "collection name"},
					&cli.StringFlag{Name: "ticker", Value: "TESTNFT", Usage: "collection ticker"},
					&cli.StringFlag{Name: "amount", Value: "50000000000000000", Usage: "issue payment in base units"},
				},
				Action: issueCmd,
			},
			{
				Name:  "create",
				Usage: "Mint one unit to an address",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "recipient, defaults to the holder wallet"},
				},
				Action: createCmd,
			},
			{
				Name:  "update",
				Usage: "Send a unit to the contract to update its attributes",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "unit holder, defaults to the holder wallet"},
					&cli.Uint64Flag{Name: "serial", Value: 1, Usage: "serial of the unit"},
					&cli.StringFlag{Name: "attributes", Value: "NEWATTRIBUTES", Usage: "new attributes"},
				},
				Action: updateCmd,
			},
			{
				Name:  "send-nft",
				Usage: "Move a unit out of the contract custody",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "recipient, defaults to the holder wallet"},
					&cli.Uint64Flag{Name: "serial", Value: 1, Usage: "serial of the unit"},
				},
				Action: sendNFTCmd,
			},
			{
				Name:   "token-id",
				Usage:  "Query the issued collection identifier",
				Action: tokenIdCmd,
			},
			{
				Name:      "balance",
				Usage:     "Show the native and token balances of an address",
				ArgsUsage: "ADDRESS",
				Action:    balanceCmd,
			},
			{
				Name:   "settle",
				Usage:  "Process pending asynchronous calls",
				Action: settleCmd,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		logger.Printf("%v\n", err)
		os.Exit(1)
	}
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		usr, _ := user.Current()
		return filepath.Join(usr.HomeDir, p[2:])
	}
	return p
}
