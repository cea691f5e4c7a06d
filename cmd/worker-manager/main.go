// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-workers/internal/analytics"
	"loan-workers/internal/audit"
	"loan-workers/internal/common/aws"
	"loan-workers/internal/common/camunda"
	"loan-workers/internal/common/config"
	"loan-workers/internal/common/database"
	"loan-workers/internal/common/genai"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/observability"
	"loan-workers/internal/conversation"
	"loan-workers/internal/kyc"
	"loan-workers/internal/rules"
	"loan-workers/internal/sanction"
	"loan-workers/internal/storage"
	"loan-workers/internal/underwriting"
	"loan-workers/internal/workflow"

	// Conversation Workers (2)
	ac "loan-workers/internal/workers/conversation/assist-conversation"
	pm "loan-workers/internal/workers/conversation/process-message"

	// Decision Workers (3)
	er "loan-workers/internal/workers/rules/evaluate-rules"
	mr "loan-workers/internal/workers/rules/manage-business-rules"
	ea "loan-workers/internal/workers/underwriting/evaluate-application"

	// Verification & Fulfilment Workers (2)
	vk "loan-workers/internal/workers/kyc/verify-kyc"
	sl "loan-workers/internal/workers/sanction/generate-sanction-letter"

	// Audit Workers (1)
	fa "loan-workers/internal/workers/audit/fetch-audit-trail"
)

var obs *observability.Observability

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs = observability.New("loan-worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress, log)
		return err
	}, 10, 2*time.Second, zapLog, "Camunda client initialization")

	if err != nil {
		zapLog.Fatal("camunda client failed after retries", zap.Error(err))
	}
	zapLog.Info("Camunda client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared Domain Services ---

	// Development runs against the seeded in-memory directory so the full
	// pipeline works without fixture data in Postgres.
	var directory storage.Directory
	var letters storage.LetterStore
	if cfg.App.Environment == "development" {
		seeded := storage.NewSeededDirectory()
		directory, letters = seeded, seeded
	} else {
		pgDir := storage.NewPostgresDirectory(pg.DB)
		directory, letters = pgDir, pgDir
	}

	auditSink := audit.NewElasticsearchSink(esClient, log)

	underwriter := underwriting.NewEngineWithPolicy(directory, auditSink, underwriting.Policy{
		MinCreditScore:    cfg.Lending.Underwriting.MinCreditScore,
		StretchMultiplier: cfg.Lending.Underwriting.StretchMultiplier,
		MaxEMIRatio:       cfg.Lending.Underwriting.MaxEMIRatio,
	}, log)
	verifier := kyc.NewVerifierWithThreshold(directory, auditSink, cfg.Lending.KYC.NameMatchThreshold, log)

	ruleStore := rules.NewRedisStoreWithKey(redis.Client, cfg.Lending.Rules.RedisKey)
	ruleEngine, err := rules.NewEngine(ctx, ruleStore, log)
	if err != nil {
		zapLog.Fatal("rules engine init failed", zap.Error(err))
	}

	notifier := buildNotifier(ctx, cfg, directory, log, zapLog)
	sanctions := sanction.NewService(sanction.TextRenderer{}, notifier, letters, auditSink, log)

	conversations := conversation.NewStore()
	engine := workflow.NewEngine(directory, underwriter, verifier, sanctions, conversations, log)

	generator := genai.NewClient(genai.Config{
		BaseURL:     cfg.APIs.GenAI.BaseURL,
		Timeout:     config.GetDuration(cfg.APIs.GenAI.Timeout),
		MaxRetries:  cfg.APIs.GenAI.MaxRetries,
		MaxTokens:   cfg.APIs.GenAI.MaxTokens,
		Temperature: cfg.APIs.GenAI.Temperature,
	}, log)
	// The assistant keeps its own session store: the staged engine and the
	// assistant track different conversation shapes, and a customer's
	// session lives in exactly one mode at a time.
	assistant := workflow.NewAssistant(directory, underwriter, conversation.NewStore(), generator, nil, log)

	zapLog.Info("All domain services initialized")

	// --- Register Workers ---

	// --- 1. Conversation Workers (2) ---
	if cfg.Workers[pm.TaskType].Enabled {
		handler := pm.NewHandler(
			&pm.Config{
				Timeout: config.GetDuration(cfg.Workers[pm.TaskType].Timeout),
			},
			engine, log,
		)
		startWorker(camundaClient, pm.TaskType, cfg.Workers[pm.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ac.TaskType].Enabled {
		handler := ac.NewHandler(
			&ac.Config{
				Timeout: config.GetDuration(cfg.Workers[ac.TaskType].Timeout),
			},
			assistant, log,
		)
		startWorker(camundaClient, ac.TaskType, cfg.Workers[ac.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Decision Workers (3) ---
	if cfg.Workers[ea.TaskType].Enabled {
		handler := ea.NewHandler(
			&ea.Config{
				Timeout:       config.GetDuration(cfg.Workers[ea.TaskType].Timeout),
				DefaultTenure: cfg.Lending.Underwriting.DefaultTenure,
				DefaultRate:   cfg.Lending.DefaultOffer.Rate,
			},
			underwriter, log,
		)
		startWorker(camundaClient, ea.TaskType, cfg.Workers[ea.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[er.TaskType].Enabled {
		handler := er.NewHandler(
			&er.Config{
				Timeout: config.GetDuration(cfg.Workers[er.TaskType].Timeout),
			},
			ruleEngine, log,
		)
		startWorker(camundaClient, er.TaskType, cfg.Workers[er.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[mr.TaskType].Enabled {
		handler := mr.NewHandler(
			&mr.Config{
				Timeout: config.GetDuration(cfg.Workers[mr.TaskType].Timeout),
			},
			ruleEngine, log,
		)
		startWorker(camundaClient, mr.TaskType, cfg.Workers[mr.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Verification & Fulfilment Workers (2) ---
	if cfg.Workers[vk.TaskType].Enabled {
		handler := vk.NewHandler(
			&vk.Config{
				Timeout: config.GetDuration(cfg.Workers[vk.TaskType].Timeout),
			},
			verifier, log,
		)
		startWorker(camundaClient, vk.TaskType, cfg.Workers[vk.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sl.TaskType].Enabled {
		handler := sl.NewHandler(
			&sl.Config{
				Timeout:     config.GetDuration(cfg.Workers[sl.TaskType].Timeout),
				DefaultRate: cfg.Lending.DefaultOffer.Rate,
			},
			sanctions, directory, log,
		)
		startWorker(camundaClient, sl.TaskType, cfg.Workers[sl.TaskType], handler.Handle, zapLog)
	}

	// --- 4. Audit Workers (1) ---
	if cfg.Workers[fa.TaskType].Enabled {
		handler := fa.NewHandler(fa.LoadConfig(), auditSink, log)
		startWorker(camundaClient, fa.TaskType, cfg.Workers[fa.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 8 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
					"time":   time.Now().Format(time.RFC3339),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "ready",
				"workers": camundaClient.RegisteredTaskTypes(),
				"time":    time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/analytics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(analytics.Snapshot())
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := camundaClient.Shutdown(); err != nil {
		zapLog.Error("Error shutting down Camunda client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// buildNotifier wires SES/SNS delivery when notifications are enabled.
// A nil notifier disables delivery without blocking letter generation.
func buildNotifier(ctx context.Context, cfg *config.Config, directory storage.Directory, log logger.Logger, zapLog *zap.Logger) sanction.Notifier {
	if !cfg.Notifications.Email.Enabled {
		zapLog.Info("Sanction notifications disabled")
		return nil
	}

	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Warn("SES client init failed, notifications disabled", zap.Error(err))
		return nil
	}

	var snsClient sanction.SNSService
	if cfg.Notifications.SMS.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS client init failed, SMS delivery disabled", zap.Error(err))
		} else {
			snsClient = client
		}
	}

	resolve := func(ctx context.Context, customerID string) (sanction.Contact, error) {
		customer, err := directory.GetCustomer(ctx, customerID)
		if err != nil {
			return sanction.Contact{}, err
		}
		if customer == nil {
			return sanction.Contact{}, fmt.Errorf("customer %s not found", customerID)
		}
		return sanction.Contact{Email: customer.Email, Phone: customer.Phone}, nil
	}

	return sanction.NewAWSNotifier(sesClient, snsClient, cfg.Notifications.Email.FromEmail, resolve, log)
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	timed := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordJobProcessed(context.Background(), taskType)
		obs.RecordJobDuration(context.Background(), time.Since(start), taskType)
	}

	client.RegisterWorker(taskType, camunda.WorkerSettings{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
	}, timed)
}
