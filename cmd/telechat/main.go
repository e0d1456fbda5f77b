package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/telechat/telechat/internal/app"
	"github.com/telechat/telechat/internal/profile"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// fx logs would land on the TUI's screen.
	client := fx.New(
		app.Module(app.Params{ProfileName: profileName}),
		fx.NopLogger,
	)

	client.Run()
}
