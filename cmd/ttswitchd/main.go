// Command ttswitchd runs the Time-Triggered send scheduler described by
// this module against a configured set of datapath ports. Wiring is
// adapted from pavelkim-tzsp_server's cmd/tzsp_server/main.go
// (config/logger bring-up, signal handling) and the teacher package's
// examples/hub.go (minimal inline demonstration wiring).
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netrack/ttsched"
	"github.com/netrack/ttsched/internal/config"
	"github.com/netrack/ttsched/internal/logging"
	"github.com/netrack/ttsched/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "ttswitchd.yaml", "Path to configuration file")
	metricsAddr := flag.String("metrics-addr", ":9090", "Address to serve Prometheus metrics on")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log.Info("starting ttswitchd", "config", *configPath)

	collector := metrics.NewCollector("ttswitchd")
	prometheus.MustRegister(collector)

	clock := tt.NewSystemClock()
	registry := tt.NewRegistry()

	advanceTime, err := time.ParseDuration(cfg.Scheduler.AdvanceTime)
	if err != nil {
		advanceTime = tt.DefaultAdvanceTime
	}

	for _, pc := range cfg.Ports {
		name := pc.Name
		newSource := func() (tt.TimerSource, error) { return tt.NewSystemTimerSource() }

		send := func(flowID uint16, frame []byte) {
			log.Debug("emit", "port", name, "flow_id", flowID, "bytes", len(frame))
		}
		miss := func(flowID uint16, sendTimeAbs time.Time) {
			collector.IncMisses()
			log.Warn("miss", "port", name, "flow_id", flowID)
		}
		onCollision := func(c tt.Collision) {
			collector.IncCollisions()
			log.Error("collision", "port", name, "instant", c.Instant, "flow_a", c.FlowIDA, "flow_b", c.FlowIDB)
		}
		onDrop := func(flowID uint16) {
			collector.IncDrops()
			log.Warn("drop", "port", name, "flow_id", flowID)
		}

		registry.Add(tt.NewPort(name, clock, newSource, send, miss, onCollision, onDrop))
		log.Info("registered port", "name", name)
	}

	// mux is handed decoded control-plane messages by whatever
	// experimenter-vendor message decoder sits in front of it; framing
	// is out of scope here, so nothing in this binary calls
	// mux.Dispatch directly.
	mux := tt.NewControlMux()
	mux.HandleFunc(tt.AddReq, func(ctrl tt.FlowCtrl, mods []tt.FlowMod) {
		session := tt.NewControlSession()
		if err := session.BeginAdd(len(mods), cfg.Scheduler.MaxFlows); err != nil {
			log.Error("BeginAdd failed", "error", err)
			return
		}
		for _, mod := range mods {
			if err := session.AddEntry(mod); err != nil {
				log.Error("AddEntry failed", "error", err)
				return
			}
		}
		if err := session.EndAdd(registry); err != nil {
			log.Error("EndAdd failed", "error", err)
			return
		}

		if p, ok := registry.Port(mods[0].Port); ok {
			if err := p.Start(advanceTime); err != nil {
				log.Error("Start failed", "port", mods[0].Port, "error", err)
			}
		}
	})

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			log.Error("metrics server exited", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
}
