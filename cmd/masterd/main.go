package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"

	"github.com/masterd-net/masterd/internal"
)

var cli struct {
	Listen    []string `short:"l" placeholder:"ADDRESS" help:"Listen on this address. May be given multiple times; without it, all IPv4 and IPv6 addresses are used."`
	Port      []string `short:"p" placeholder:"PORT" default:"${master_port}" help:"Listen on this UDP port. May be given multiple times."`
	Daemon    bool     `short:"D" help:"Run as a daemon."`
	JailPath  string   `short:"j" placeholder:"PATH" default:"${jail_path}" help:"Chroot to this path before dropping super-user privileges."`
	User      string   `short:"u" placeholder:"USER" default:"${low_priv_user}" help:"Drop super-user privileges to this account."`
	Hardening bool     `help:"Apply Landlock and seccomp-bpf filters after startup (Linux only)."`
	Verbose   bool     `short:"v" help:"Verbose logging."`
}

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	kong.Parse(&cli,
		kong.Name("masterd"),
		kong.Description("UDP master server for game-server discovery."),
		kong.UsageOnError(),
		kong.Vars{
			"master_port":   internal.DefaultMasterPort,
			"jail_path":     internal.DefaultJailPath,
			"low_priv_user": internal.DefaultLowPrivUser,
		},
	)

	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	lifecycle := internal.NewLifecycle()
	lifecycle.JailPath = cli.JailPath
	lifecycle.User = cli.User
	if cli.Daemon {
		lifecycle.RequestDaemon()
	}

	if err := lifecycle.UnsecureInit(); err != nil {
		log.WithError(err).Fatal("System initialization failed")
	}

	listenSet := internal.NewListenSet()
	for _, addr := range cli.Listen {
		if err := listenSet.DeclareAddress(addr); err != nil {
			log.WithError(err).WithField("address", addr).Fatal("Can't declare listen address")
		}
	}

	if err := listenSet.Resolve(cli.Port); err != nil {
		log.WithError(err).Fatal("Can't resolve the listen addresses")
	}

	if err := listenSet.CreateSockets(); err != nil {
		log.WithError(err).Fatal("Can't create the listen sockets")
	}
	if len(listenSet.Sockets) == 0 {
		log.Fatal("No listening socket left")
	}

	// Sockets exist now, so the privileges are no longer needed; spend as
	// much of the process lifetime as possible without them.
	if err := lifecycle.SecurityInit(); err != nil {
		lifecycle.Close()
		listenSet.CloseAll()
		log.WithError(err).Fatal("Security initialization failed")
	}

	if err := lifecycle.SecureInit(); err != nil {
		listenSet.CloseAll()
		log.WithError(err).Fatal("Daemonization failed")
	}

	if cli.Hardening {
		internal.Hardening()
	}

	log.WithField("sockets", len(listenSet.Sockets)).Info("Startup complete")

	// The master protocol loop polls these sockets; it plugs in here.
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	<-stopChan

	log.Info("Shutting down")
	listenSet.CloseAll()
}
