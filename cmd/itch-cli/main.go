package main

import (
	"itchscraper/cmd/itch-cli/commands"
	"itchscraper/internal/components/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
