// Command elscontrol wires the leadscrew core together with the ambient
// stack (config, console, telemetry) for a real Raspberry-Pi-driven ELS.
// Grounded on the teacher's cli.Service: an explicit context, a
// sync.WaitGroup per goroutine, and a signal channel that tears everything
// down on interrupt.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	logger "github.com/d2r2/go-logger"
	log "github.com/sirupsen/logrus"
	"github.com/stianeikeland/go-rpio/v4"

	"github.com/aliher1911/els/axis"
	"github.com/aliher1911/els/console"
	"github.com/aliher1911/els/elsconfig"
	"github.com/aliher1911/els/globalstate"
	"github.com/aliher1911/els/leadscrew"
	"github.com/aliher1911/els/pinio"
	"github.com/aliher1911/els/telemetry"
	"github.com/aliher1911/els/tickdriver"
)

var configPath = flag.String("config", "/etc/els/els.ini", "path to the INI config file")

func main() {
	flag.Parse()
	logger.ChangePackageLogLevel("i2c", logger.InfoLevel)

	cfg, err := elsconfig.Load(*configPath)
	if err != nil {
		log.Fatalf("elsconfig: %v", err)
	}

	if err := rpio.Open(); err != nil {
		log.Fatalf("pinio: failed to open GPIO: %v", err)
	}
	defer rpio.Close()

	io := pinio.NewRPIO(cfg.StepPin, cfg.DirPin)
	lead := axis.NewQuadrature(quadraturePinA, quadraturePinB)
	defer lead.Close()

	state := globalstate.New()
	ctrl := leadscrew.New(lead, io, state, cfg.Leadscrew)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		tickdriver.Run(ctx, time.Duration(cfg.Leadscrew.TimerUS)*time.Microsecond, func() {
			lead.Poll()
			ctrl.Update()
		})
	}()

	exporter := telemetry.NewExporter(ctrl, state, cfg.TelemetryListen, time.Second)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := exporter.Run(ctx); err != nil {
			log.Errorf("telemetry: %v", err)
		}
	}()

	cons, err := console.Open(ctrl, state, lead, cfg.ConsolePort, cfg.ConsoleBaud)
	if err != nil {
		log.Fatalf("console: %v", err)
	}
	defer cons.Close()
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := cons.Run(); err != nil {
			log.Errorf("console: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("elscontrol: received interrupt signal, shutting down")
	cancel()
	wg.Wait()
}

// Quadrature encoder pin assignment is not yet surfaced through elsconfig
// (only the stepper's step/dir pins are); tracked as a follow-up alongside
// the rest of the [pins] section.
const (
	quadraturePinA = 22
	quadraturePinB = 23
)
