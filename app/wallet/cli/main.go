package main

import "github.com/ardanlabs/crowdsale/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
