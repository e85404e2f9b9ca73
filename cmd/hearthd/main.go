package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ghndrx/hearth-mobile-sub001/internal/daemon"
	"github.com/ghndrx/hearth-mobile-sub001/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	bindFlag := flag.String("bind", "", "listen address (overrides config, e.g. 127.0.0.1:8745)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{ProfileName: profileName, BindAddr: *bindFlag}),
	)

	app.Run()
}
