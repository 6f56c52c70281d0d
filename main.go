package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sanaflow/config"
	"sanaflow/fetcher"
	"sanaflow/logger"
	"sanaflow/organizer"
	"sanaflow/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Sanaflow.Name,
		"version": cfg.Sanaflow.Version,
		"source":  cfg.Source.URL,
	}).Info("starting sanaflow")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Logging.DashboardName != "" {
		logger.InitCloudWatch(cfg.Storage.S3.Region, cfg.Sanaflow.Name, cfg.Logging.DashboardName)
	}
	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("fetch cycle failed")
		os.Exit(1)
	}

	log.Info("sanaflow finished")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Log) error {
	f := fetcher.New(cfg)

	payload, err := f.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch main payload: %w", err)
	}

	records := fetcher.Records(payload.Data)
	res, err := organizer.Organize(records, payload.FetchedAt.Format(time.RFC3339), cfg.Source.URL)
	if err != nil {
		if !errors.Is(err, organizer.ErrEmptyBatch) {
			return fmt.Errorf("organize records: %w", err)
		}
		// Zero records is worth flagging but the outputs are still valid.
		log.WithFields(logger.Fields{"endpoint": payload.Endpoint}).Warn("api returned no records")
	}
	logger.RecordBatch(res.Accepted, res.Rejected)

	doc := res.Document

	var artifacts []string

	rawPath, err := writer.WriteRawJSON(cfg.Output.Dir, cfg.Output.RawFile, payload.Body)
	if err != nil {
		return err
	}
	artifacts = append(artifacts, rawPath)

	orgPath, err := writer.WriteOrganizedJSON(cfg.Output.Dir, cfg.Output.OrganizedFile, doc)
	if err != nil {
		return err
	}
	artifacts = append(artifacts, orgPath)

	table := organizer.Flatten(doc.AllRecords)

	csvPath, err := writer.WriteCSV(cfg.Output.Dir, cfg.Output.CSVFile, table)
	if err != nil {
		return err
	}
	if csvPath != "" {
		artifacts = append(artifacts, csvPath)
	}

	if cfg.Output.Parquet.Enabled {
		pqPath, err := writer.WriteParquet(cfg.Output.Dir, cfg.Output.Parquet.File, cfg.Output.Parquet.Compression, table)
		if err != nil {
			return err
		}
		if pqPath != "" {
			artifacts = append(artifacts, pqPath)
		}
	}

	logSummary(log, res)

	for i, extra := range f.FetchHistorical(ctx, payload) {
		name := fmt.Sprintf("historical_data_%d.json", i+1)
		path, err := writer.WriteRawJSON(cfg.Output.Dir, name, extra.Body)
		if err != nil {
			log.WithError(err).WithFields(logger.Fields{"endpoint": extra.Endpoint}).Warn("failed to save historical payload")
			continue
		}
		artifacts = append(artifacts, path)
	}

	if cfg.Storage.S3.Enabled {
		uploader, err := writer.NewUploader(cfg)
		if err != nil {
			return fmt.Errorf("create s3 uploader: %w", err)
		}
		batch, err := uploader.Upload(ctx, artifacts, doc.Metadata.TotalRecords)
		if err != nil {
			return fmt.Errorf("upload artifacts: %w", err)
		}
		log.WithFields(logger.Fields{
			"batch_id": batch.BatchID,
			"files":    len(batch.Files),
		}).Info("export batch uploaded")
	}

	return nil
}

func logSummary(log *logger.Log, res *organizer.Result) {
	doc := res.Document

	earliest := "n/a"
	latest := "n/a"
	if doc.Metadata.DateRange.Earliest != nil {
		earliest = *doc.Metadata.DateRange.Earliest
	}
	if doc.Metadata.DateRange.Latest != nil {
		latest = *doc.Metadata.DateRange.Latest
	}

	log.WithFields(logger.Fields{
		"total_records":     doc.Metadata.TotalRecords,
		"rejected_records":  res.Rejected,
		"unique_dates":      len(doc.ByDate),
		"unique_currencies": len(doc.ByCurrency),
		"earliest":          earliest,
		"latest":            latest,
	}).Info("data summary")
}
