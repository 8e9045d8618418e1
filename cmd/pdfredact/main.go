package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/sirupsen/logrus"

	"github.com/terratensor/pdfredact/internal/config"
	"github.com/terratensor/pdfredact/internal/errs"
	"github.com/terratensor/pdfredact/internal/matcher"
	"github.com/terratensor/pdfredact/internal/pii"
	"github.com/terratensor/pdfredact/internal/redactor"
	"github.com/terratensor/pdfredact/internal/render"
	"github.com/terratensor/pdfredact/internal/storage"
	"github.com/terratensor/pdfredact/internal/textract"
)

func main() {
	// Определение флагов
	configPath := flag.String("config", "pdfredact.yaml", "Path to the YAML configuration file")
	source := flag.String("source", "", "Source document as s3://bucket/key")
	bucket := flag.String("bucket", "", "Source bucket (overrides config)")
	key := flag.String("key", "", "Source object key (overrides config)")
	output := flag.String("output", "", "Output path or s3://bucket/key ending in .pdf or .pdf.gz")
	mode := flag.String("match", "", "Match mode: substring (default) or positional")
	region := flag.String("region", "", "AWS region")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	// Флаги имеют приоритет над файлом
	if *source != "" {
		if err := cfg.SetSource(*source); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
	}
	setIfNotEmpty(&cfg.Source.Bucket, *bucket)
	setIfNotEmpty(&cfg.Source.Key, *key)
	setIfNotEmpty(&cfg.Output.Path, *output)
	setIfNotEmpty(&cfg.Matching.Mode, *mode)
	setIfNotEmpty(&cfg.AWS.Region, *region)
	setIfNotEmpty(&cfg.Log.Level, *logLevel)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, cfg, log)
	if err != nil {
		log.WithField("kind", errs.KindOf(err).String()).WithError(err).Error("redaction failed")
		stop()
		if errs.KindOf(err) == errs.KindConfig {
			os.Exit(2)
		}
		os.Exit(1)
	}

	fmt.Println("Redacted PDF saved to", report.Output)
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) (redactor.Report, error) {
	if err := render.SetLicenseKey(cfg.Unidoc.LicenseKey); err != nil {
		return redactor.Report{}, errs.Config(err.Error())
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS.Region),
		awsconfig.WithRetryMaxAttempts(cfg.AWS.MaxAttempts),
	)
	if err != nil {
		return redactor.Report{}, errs.Config(fmt.Sprintf("load aws config: %v", err))
	}

	s3Client := s3.NewFromConfig(awsCfg)
	sink, err := storage.NewSink(cfg.Output.Path, s3Client)
	if err != nil {
		return redactor.Report{}, errs.Config(err.Error())
	}

	mode, err := matcher.ParseMode(cfg.Matching.Mode)
	if err != nil {
		return redactor.Report{}, errs.Config(err.Error())
	}

	r := &redactor.Redactor{
		Source: storage.NewS3Source(s3Client),
		Extractor: textract.NewExtractor(
			textract.NewClient(awstextract.NewFromConfig(awsCfg), cfg.Textract.JobTag),
			textract.Options{
				PollInterval: cfg.Textract.PollInterval,
				MaxPolls:     cfg.Textract.MaxPolls,
			},
			log.WithField("component", "textract"),
		),
		Detector: pii.NewDetector(
			comprehend.NewFromConfig(awsCfg),
			pii.Options{
				Language:   cfg.LanguageCode(),
				MinScore:   cfg.PII.MinScore,
				Categories: cfg.PII.Categories,
			},
			log.WithField("component", "pii"),
		),
		Matcher:  matcher.New(mode),
		Renderer: render.New(log.WithField("component", "render")),
		Sink:     sink,
		Log:      log,
	}
	return r.Run(ctx, cfg.Location())
}

func newLogger(c config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
