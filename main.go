package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron"
	"github.com/tammytan95/pilea/internal/config"
	"github.com/tammytan95/pilea/internal/syncer"
)

type Runner interface {
	Run() error
}

var runner Runner

func main() {
	singleRun := flag.Bool("single-run", false, "run task once (disable cron)")
	configFile := flag.String("config", "./config.yml", "configuration file")
	secretsFile := flag.String("secrets", "./secrets.json", "secrets file")
	help := flag.Bool("help", false, "show command help")

	flag.Parse()

	if *help {
		fmt.Println("pilea sync agent")
		fmt.Println("pilea [options] task")
		flag.PrintDefaults()
		return
	}

	err := config.ReadConfig("PILEA_CONFIG", *configFile, *secretsFile)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if flag.NArg() == 0 {
		fmt.Println("No task passed in")
		return
	}

	switch flag.Arg(0) {
	case "sync":
		runner, err = syncer.NewSyncRunner()
	case "register":
		runner, err = syncer.NewRegisterRunner()
	default:
		fmt.Println("No task passed in")
		return
	}

	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	run()

	if *singleRun {
		return
	}

	c := cron.New()
	c.AddFunc(config.CurrentConfig().UpdateFrequency, run)

	c.Start()

	select {}

}

func run() {
	fmt.Println(time.Now().Format(time.RFC850))
	err := runner.Run()
	if err != nil {
		fmt.Println(err)
	}
}
