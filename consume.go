package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/muhammadolammi/cvcustomizer/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"
)

const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// processTailoring runs both generations for a queued tailoring, renders the
// PDFs, stores them in R2 when configured and persists the result.
func (appConfig *AppConfig) processTailoring(ctx context.Context, job TailoringJob) error {
	row, err := appConfig.DB.GetTailoring(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("error getting tailoring %v: %w", job.ID, err)
	}

	res, err := appConfig.tailor(ctx, TailorRequest{
		CurrentResume:  row.CurrentResume,
		JobDescription: row.JobDescription,
	})
	if err != nil {
		return err
	}

	keys := map[DocumentKind]string{}
	if appConfig.R2 != nil && appConfig.AwsConfig != nil {
		client := newR2Client(*appConfig.AwsConfig, appConfig.R2)
		docs := map[DocumentKind]string{
			DocumentResume:      res.TailoredResume,
			DocumentCoverLetter: res.CoverLetter,
		}
		for kind, text := range docs {
			file, err := renderExport("pdf", kind, text)
			if err != nil {
				return fmt.Errorf("rendering %s pdf: %w", kind, err)
			}
			key := tailoringObjectKey(row.ID, kind)
			if err := UploadToR2(ctx, client, appConfig.R2.Bucket, key, file.ContentType, file.Body); err != nil {
				return fmt.Errorf("uploading %s: %w", key, err)
			}
			keys[kind] = key
		}
	}

	err = appConfig.DB.CompleteTailoring(ctx, database.CompleteTailoringParams{
		ID:                row.ID,
		TailoredResume:    toNullString(res.TailoredResume),
		CoverLetter:       toNullString(res.CoverLetter),
		ResumePdfKey:      toNullString(keys[DocumentResume]),
		CoverLetterPdfKey: toNullString(keys[DocumentCoverLetter]),
	})
	if err != nil {
		return fmt.Errorf("failed to save tailoring result: %w", err)
	}
	return nil
}

func (appConfig *AppConfig) notify(job TailoringJob, status, message string) {
	if appConfig.Broker == nil {
		return
	}
	if err := appConfig.Broker.PublishUpdate(job.ID, status, message); err != nil {
		appConfig.Logger.WithError(err).WithField("tailoring_id", job.ID).Warn("failed to publish update")
	}
}

// handleDelivery processes one queued job and reports whether the message
// should go back on the queue. A job cut off by shutdown is requeued instead
// of being marked failed.
func (appConfig *AppConfig) handleDelivery(ctx context.Context, log logrus.FieldLogger, body []byte) (requeue bool) {
	job := TailoringJob{}
	if err := json.Unmarshal(body, &job); err != nil {
		log.WithError(err).Error("error unmarshalling message body")
		return false
	}
	log = log.WithField("tailoring_id", job.ID)
	log.Info("processing tailoring")

	appConfig.notify(job, statusProcessing, "tailoring started")
	if err := appConfig.DB.UpdateTailoringStatus(ctx, database.UpdateTailoringStatusParams{
		Status: statusProcessing,
		ID:     job.ID,
	}); err != nil {
		log.WithError(err).Warn("error updating status")
	}

	if err := appConfig.processTailoring(ctx, job); err != nil {
		if ctx.Err() != nil {
			log.WithError(err).Warn("tailoring interrupted, requeueing")
			return true
		}
		log.WithError(err).Error("tailoring failed")
		if err := appConfig.DB.FailTailoring(ctx, database.FailTailoringParams{
			ID:    job.ID,
			Error: toNullString(err.Error()),
		}); err != nil {
			log.WithError(err).Warn("error marking tailoring failed")
		}
		appConfig.notify(job, statusFailed, "tailoring failed")
		return false
	}

	appConfig.notify(job, statusCompleted, "tailoring completed")
	log.Info("tailoring completed")
	return false
}

// worker consumes the tailorings queue until ctx is done. Any other exit is
// an error.
func (appConfig *AppConfig) worker(ctx context.Context, id int) error {
	log := appConfig.Logger.WithField("worker", id+1)

	conn, err := amqp.Dial(appConfig.RABBITMQUrl)
	if err != nil {
		return fmt.Errorf("worker %d: error dialling rabbitmq: %w", id+1, err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d: error opening rabbitmq channel: %w", id+1, err)
	}
	defer ch.Close()

	if _, err := declareTailoringsQueue(ch); err != nil {
		return fmt.Errorf("worker %d: failed to declare queue: %w", id+1, err)
	}
	// one job in flight per worker
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d: failed to set qos: %w", id+1, err)
	}

	msgs, err := ch.Consume(
		tailoringsQueue, // queue name
		"",              // consumer tag
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("worker %d: error consuming rabbitmq messages: %w", id+1, err)
	}

	log.Info("worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("worker %d: delivery channel closed", id+1)
			}
			if appConfig.handleDelivery(ctx, log, msg.Body) {
				if err := msg.Nack(false, true); err != nil {
					log.WithError(err).Warn("nack failed")
				}
				continue
			}
			if err := msg.Ack(false); err != nil {
				log.WithError(err).Warn("ack failed")
			}
		}
	}
}

// StartConsumerWorkerPool runs numWorkers consumers on the tailorings queue.
// It blocks until ctx is done or a worker fails, and returns the first
// worker error.
func (appConfig *AppConfig) StartConsumerWorkerPool(ctx context.Context, numWorkers int) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range numWorkers {
		g.Go(func() error {
			return appConfig.worker(gctx, i)
		})
	}
	return g.Wait()
}
