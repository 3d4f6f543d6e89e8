package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "Gateway API base URL")
	gateway   = flag.String("gateway", "", "Gateway to use (empty = server default)")
	currency  = flag.String("currency", "USD", "Payment currency")
	amount    = flag.Float64("amount", 49.90, "Payment amount")
	count     = flag.Int("count", 1, "Number of payments to create")
	refund    = flag.Bool("refund", false, "Refund each payment after polling")
	pollEvery = flag.Duration("poll", 2*time.Second, "Status polling interval")
	pollMax   = flag.Int("poll-max", 5, "Max status polls per payment")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sim := NewSimulator(&SimulatorConfig{
		ServerURL:    *serverURL,
		Gateway:      *gateway,
		Currency:     *currency,
		Amount:       *amount,
		Count:        *count,
		Refund:       *refund,
		PollInterval: *pollEvery,
		PollMax:      *pollMax,
	}, logger)

	if err := sim.Run(); err != nil {
		logger.Error("Simulation finished with errors", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Simulation finished")
}
