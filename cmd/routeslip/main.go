package main

import (
	"fmt"
	"os"

	"github.com/example/routeslip/internal/cli"
)

func main() {
	session := cli.NewSession()
	rootCmd := cli.NewRootCmd(session)

	err := rootCmd.Execute()
	if closeErr := session.Close(os.Stderr); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
