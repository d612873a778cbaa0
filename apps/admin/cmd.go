package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/openlab-uninorte/aula/core/activity"
	"github.com/openlab-uninorte/aula/core/course"
	"github.com/openlab-uninorte/aula/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrRepo    user.Repository
	courseRepo course.Repository
	actRepo    activity.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - create or update a user; password prompted")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  activate -activity ID -label LABEL -duration N [-unit minutes|hours] [-public] - open an assessment window")
	fmt.Println("  results -activity ID - print a peer assessment's averages")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant all roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	activateCmd := flag.NewFlagSet("activate", flag.ExitOnError)
	activateActivity := activateCmd.String("activity", "", "The activity ID.")
	activateLabel := activateCmd.String("label", "", "The assessment label shown to students.")
	activateDuration := activateCmd.Int("duration", 0, "The window length.")
	activateUnit := activateCmd.String("unit", "minutes", "The window unit: minutes or hours.")
	activatePublic := activateCmd.Bool("public", false, "Make the results visible to students.")

	resultsCmd := flag.NewFlagSet("results", flag.ExitOnError)
	resultsActivity := resultsCmd.String("activity", "", "The assessment activity ID.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" && *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "activate":
		if err := activateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *activateActivity == "" || *activateLabel == "" || *activateDuration < 1 {
			activateCmd.Usage()
			return errHelp
		}
		return cli.activate(*activateActivity, *activateLabel, *activateUnit, *activateDuration, *activatePublic)

	case "results":
		if err := resultsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resultsActivity == "" {
			resultsCmd.Usage()
			return errHelp
		}
		return cli.printResults(*resultsActivity)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
