package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/lead-console/internal/apiclient"
	"gitlab.com/timkado/api/lead-console/internal/config"
	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/internal/observer"
	"gitlab.com/timkado/api/lead-console/pkg/logger"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// Operations the generator can issue against the lead backend.
const (
	opCreate    = "create"
	opList      = "list"
	opDashboard = "dashboard"
	opSearchKB  = "search_kb"
)

// loadTask is one backend call handed to the worker pool.
type loadTask struct {
	ctx    context.Context
	op     string
	client apiclient.ClientInterface
}

type counters struct {
	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	baseURL := flag.String("url", cfg.API.BaseURL, "Lead backend base URL")
	opsStr := flag.String("ops", "create,list,dashboard", "Comma-separated operations (create, list, dashboard, search_kb)")
	rate := flag.Int("rate", 10, "Target requests per second (total)")
	duration := flag.Duration("duration", 30*time.Second, "Load test duration")
	concurrency := flag.Int("concurrency", 4, "Number of concurrent workers")
	metricsPort := flag.Int("metrics-port", 9091, "Port for Prometheus metrics endpoint")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Lead backend load generator\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Seeds fake leads and exercises read endpoints of the lead backend.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *rate <= 0 || *concurrency <= 0 {
		fmt.Println("rate and concurrency must be positive")
		os.Exit(1)
	}
	ops, err := parseOps(*opsStr)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := logger.Initialize(*logLevel, cfg.Environment); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	observer.InitMetrics(true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsServer := startMetricsServer(*metricsPort)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Metrics server shutdown error", zap.Error(err))
		}
	}()

	logger.Log.Info("Starting lead backend load generator",
		zap.String("url", *baseURL),
		zap.Strings("ops", ops),
		zap.Int("rate_per_sec", *rate),
		zap.Duration("duration", *duration),
		zap.Int("concurrency", *concurrency),
		zap.Int("metrics_port", *metricsPort),
	)

	client := apiclient.New(*baseURL, cfg.API.Timeout)
	gofakeit.Seed(time.Now().UnixNano())

	var (
		wg    sync.WaitGroup
		stats counters
	)
	pool, err := ants.NewPoolWithFunc(*concurrency, func(data interface{}) {
		defer wg.Done()
		runTask(data.(loadTask), &stats)
	})
	if err != nil {
		logger.Log.Fatal("Failed to create worker pool", zap.Error(err))
	}
	defer pool.Release()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Log.Info("Received termination signal, shutting down...", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	runLoadLoop(ctx, *rate, *duration, ops, client, pool, &wg, &stats)

	logger.Log.Info("Waiting for in-flight requests to complete...")
	wg.Wait()

	logger.Log.Info("Load generator finished",
		zap.Int64("attempted", stats.attempted.Load()),
		zap.Int64("succeeded", stats.succeeded.Load()),
		zap.Int64("failed", stats.failed.Load()),
	)
}

func parseOps(raw string) ([]string, error) {
	var ops []string
	for _, op := range strings.Split(raw, ",") {
		op = strings.TrimSpace(op)
		switch op {
		case "":
			continue
		case opCreate, opList, opDashboard, opSearchKB:
			ops = append(ops, op)
		default:
			return nil, fmt.Errorf("unsupported operation %q", op)
		}
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("no operations provided")
	}
	return ops, nil
}

func startMetricsServer(port int) *http.Server {
	logger.Log.Info("Starting Prometheus metrics server", zap.Int("port", port))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Failed to start Prometheus metrics server", zap.Error(err))
		}
	}()
	return server
}

// runLoadLoop submits one task per tick, cycling through ops, until the
// duration elapses or ctx is cancelled.
func runLoadLoop(ctx context.Context, rate int, duration time.Duration, ops []string, client apiclient.ClientInterface, pool *ants.PoolWithFunc, wg *sync.WaitGroup, stats *counters) {
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	durationTimer := time.NewTimer(duration)
	defer durationTimer.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			logger.Log.Info("Load loop stopping due to cancellation")
			return
		case <-durationTimer.C:
			logger.Log.Info("Load loop stopping after specified duration")
			return
		case <-ticker.C:
			task := loadTask{ctx: ctx, op: ops[i%len(ops)], client: client}
			stats.attempted.Add(1)
			wg.Add(1)
			if err := pool.Invoke(task); err != nil {
				wg.Done()
				stats.failed.Add(1)
				logger.Log.Warn("Failed to invoke worker pool", zap.String("op", task.op), zap.Error(err))
			}
		}
	}
}

func runTask(task loadTask, stats *counters) {
	defer utils.RecoverWithLog(task.ctx, "load task "+task.op)

	var err error
	switch task.op {
	case opCreate:
		_, err = task.client.CreateLead(task.ctx, fakeLead())
	case opList:
		_, err = task.client.ListLeads(task.ctx, model.LeadFilter{Limit: 20})
	case opDashboard:
		_, err = task.client.GetDashboardMetrics(task.ctx)
	case opSearchKB:
		_, err = task.client.SearchKnowledgeBase(task.ctx, model.KnowledgeBaseSearchRequest{Query: gofakeit.BuzzWord()})
	}
	if err != nil {
		stats.failed.Add(1)
		logger.Log.Debug("Load task failed", zap.String("op", task.op), zap.Error(err))
		return
	}
	stats.succeeded.Add(1)
}

// fakeLead builds a valid manual lead with inquiry notes long enough to
// spread urgency scores.
func fakeLead() model.LeadCreate {
	company := gofakeit.Company()
	return model.LeadCreate{
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		Email:        gofakeit.Email(),
		PhoneNumber:  gofakeit.Phone(),
		InquiryNotes: fmt.Sprintf("Company: %s, %s", company, gofakeit.Sentence(gofakeit.Number(3, 30))),
		InquiryDate:  time.Now().UTC(),
	}
}
