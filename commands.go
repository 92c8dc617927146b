package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	tailorResume string
	tailorJob    string
	tailorOutDir string

	exportIn       string
	exportFormat   string
	exportOut      string
	exportDocument string
)

var rootCmd = &cobra.Command{
	Use:           "cvcustomizer",
	Short:         "Tailor a resume and write a cover letter for a job description",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Consume queued tailorings",
	RunE:  runWork,
}

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Generate a tailored resume and cover letter from files",
	Long: `Generate a tailored resume and cover letter from a resume file and a job
description file. Inputs may be plain text, PDF or DOCX. Both documents are
written as TXT and PDF into --out-dir.`,
	RunE: runTailor,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a marked-up text file as PDF or TXT",
	RunE:  runExport,
}

func init() {
	tailorCmd.Flags().StringVar(&tailorResume, "resume", "", "current resume file (txt, pdf, docx)")
	tailorCmd.Flags().StringVar(&tailorJob, "job", "", "job description file (txt, pdf, docx)")
	tailorCmd.Flags().StringVar(&tailorOutDir, "out-dir", ".", "output directory")
	_ = tailorCmd.MarkFlagRequired("resume")
	_ = tailorCmd.MarkFlagRequired("job")

	exportCmd.Flags().StringVar(&exportIn, "in", "", "marked-up text file")
	exportCmd.Flags().StringVar(&exportFormat, "format", "pdf", "output format: pdf, txt")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default: input name with the format's extension)")
	exportCmd.Flags().StringVar(&exportDocument, "document", "", "document kind for naming: resume, coverLetter")
	_ = exportCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(serveCmd, workCmd, tailorCmd, exportCmd)
}

// setup loads configuration and connects the app for commands that talk to a
// model provider.
func setup(ctx context.Context) (Config, *AppConfig, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return Config{}, nil, nil, err
	}
	app, cleanup, err := newAppConfig(ctx, cfg, logger)
	if err != nil {
		return Config{}, nil, nil, err
	}
	return cfg, app, cleanup, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, app, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		app.Logger.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runWork(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, app, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	if app.DB == nil {
		return fmt.Errorf("empty DB_URL in environment")
	}
	if app.RabbitConn == nil {
		return fmt.Errorf("empty RABBITMQ_URL in environment")
	}

	app.Logger.WithField("workers", cfg.Workers).Info("starting consumer worker pool")
	return runWorkerPool(ctx, app, cfg.Workers)
}

// runWorkerPool treats a pool exit as an error unless ctx was cancelled.
func runWorkerPool(ctx context.Context, app *AppConfig, workers int) error {
	err := app.StartConsumerWorkerPool(ctx, workers)
	if ctx.Err() != nil {
		return nil
	}
	if err == nil {
		err = errors.New("worker pool stopped")
	}
	return err
}

// readTextFile reads a txt, pdf or docx file as text.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := ExtractResumeText(DetectResumeMime("", path, data), data)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return text, nil
}

func runTailor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, app, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resume, err := readTextFile(tailorResume)
	if err != nil {
		return err
	}
	job, err := readTextFile(tailorJob)
	if err != nil {
		return err
	}
	res, err := app.tailor(ctx, TailorRequest{CurrentResume: resume, JobDescription: job})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(tailorOutDir, 0o755); err != nil {
		return err
	}
	written, err := writeDocuments(tailorOutDir, res)
	if err != nil {
		return err
	}
	for _, path := range written {
		app.Logger.WithField("path", path).Info("wrote file")
	}
	return nil
}

// writeDocuments writes both generated documents as TXT and PDF into dir.
func writeDocuments(dir string, res TailorResult) ([]string, error) {
	docs := []struct {
		kind DocumentKind
		text string
	}{
		{DocumentResume, res.TailoredResume},
		{DocumentCoverLetter, res.CoverLetter},
	}
	var written []string
	for _, d := range docs {
		for _, format := range []string{"txt", "pdf"} {
			file, err := renderExport(format, d.kind, d.text)
			if err != nil {
				return written, fmt.Errorf("rendering %s: %w", d.kind.Filename(format), err)
			}
			path := filepath.Join(dir, file.Filename)
			if err := os.WriteFile(path, file.Body, 0o644); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	out, err := exportToFile(exportIn, exportFormat, exportOut, DocumentKind(exportDocument))
	if err != nil {
		return err
	}
	logrus.WithField("path", out).Info("wrote file")
	return nil
}

// exportToFile renders the file at in and writes it to out, or next to the
// input when out is empty. It returns the written path.
func exportToFile(in, format, out string, kind DocumentKind) (string, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return "", err
	}
	file, err := renderExport(format, kind, string(data))
	if err != nil {
		return "", fmt.Errorf("exporting %s: %w", in, err)
	}
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + "." + format
		if out == in {
			out = strings.TrimSuffix(in, filepath.Ext(in)) + ".out." + format
		}
	}
	if err := os.WriteFile(out, file.Body, 0o644); err != nil {
		return "", err
	}
	return out, nil
}
