package main

import (
	"log"
	"os"

	"github.com/openlab-uninorte/aula/core"
	"github.com/openlab-uninorte/aula/storage/database/dummy"
	"github.com/openlab-uninorte/aula/storage/roble"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := newCommandLine()
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newCommandLine() *commandLine {
	if core.Conf.Roble.ProjectID != "" {
		client := roble.NewClient(core.Conf.Roble, nil)
		return &commandLine{
			usrRepo:    roble.NewUserRepository(client),
			courseRepo: roble.NewCourseRepository(client),
			actRepo:    roble.NewActivityRepository(client),
		}
	}
	logger.Print("no Roble project configured; using in-memory storage")
	db := dummy.NewDB()
	return &commandLine{
		usrRepo:    dummy.NewUserRepository(db),
		courseRepo: dummy.NewCourseRepository(db),
		actRepo:    dummy.NewActivityRepository(db),
	}
}
