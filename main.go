package main

import (
	"flag"

	"github.com/charmbracelet/log"

	"heavymetal/cmd"
	"heavymetal/config"
)

func main() {
	var (
		scan   bool
		server bool
		port   int
	)

	flag.BoolVar(&scan, "scan", false, "Build the music library from MEDIA_FOLDER")
	flag.BoolVar(&server, "server", false, "Start in streaming server mode")
	flag.IntVar(&port, "port", 0, "Port for server mode (overrides PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	if port != 0 {
		cfg.Port = port
	}

	switch {
	case server:
		if err := cfg.ValidateServer(); err != nil {
			log.Fatal("invalid configuration", "err", err)
		}
		if err := cmd.StartWebServer(cfg); err != nil {
			log.Fatal("server failed", "err", err)
		}
	case scan:
		if err := cmd.RunScan(cfg); err != nil {
			log.Fatal("scan failed", "err", err)
		}
	default:
		flag.Usage()
	}
}
