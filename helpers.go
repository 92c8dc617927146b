package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/streadway/amqp"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	tailoringsQueue         = "tailorings"
	tailoringUpdateExchange = "tailoring_updates"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// CleanModelOutput trims generated text and drops a Markdown code fence the
// model may have wrapped it in.
func CleanModelOutput(input string) string {
	clean := strings.TrimSpace(input)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```")
	// drop the info string: ```markdown, ```text ...
	if i := strings.IndexAny(clean, "\r\n"); i >= 0 && !strings.ContainsAny(strings.TrimSpace(clean[:i]), " \t") {
		clean = clean[i:]
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// --- Object storage ---

func newR2Client(cfg aws.Config, r2 *R2Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
}

func DownloadFromR2(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	_, err = io.Copy(buf, out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

func UploadToR2(ctx context.Context, client *s3.Client, bucket, key, contentType string, body []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func tailoringObjectKey(id uuid.UUID, kind DocumentKind) string {
	return fmt.Sprintf("tailorings/%s/%s", id, kind.Filename("pdf"))
}

// --- Resume text extraction ---

// DetectResumeMime picks a supported mime type from the declared one, the
// file name and the content.
func DetectResumeMime(declared, filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	case ".txt", ".md":
		return mimeText
	}
	if declared != "" && declared != "application/octet-stream" {
		if i := strings.Index(declared, ";"); i >= 0 {
			declared = declared[:i]
		}
		return strings.TrimSpace(declared)
	}
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return mimePDF
	}
	return "application/octet-stream"
}

func ExtractResumeText(mime string, data []byte) (string, error) {
	switch mime {
	case mimeText:
		return string(data), nil

	case mimePDF:
		return extractPDFText(bytes.NewReader(data))

	case mimeDocx:
		return extractDocxText(bytes.NewReader(data))

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, mime)
	}
}

func extractPDFText(reader io.ReaderAt) (string, error) {
	pdfReader, err := pdf.NewReader(reader, lenReader(reader))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(reader io.Reader) (string, error) {
	buf := new(bytes.Buffer)
	_, err := io.Copy(buf, reader)
	if err != nil {
		return "", err
	}
	r := bytes.NewReader(buf.Bytes())

	doc, err := docx.ReadDocxFromMemory(r, int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}

// Utility: get reader length for PDF
func lenReader(r io.ReaderAt) int64 {
	switch v := r.(type) {
	case *bytes.Reader:
		return int64(v.Len())
	default:
		return 0
	}
}

// --- Messaging ---

// Broker publishes tailoring jobs and their status updates.
type Broker interface {
	PublishJob(job TailoringJob) error
	PublishUpdate(id uuid.UUID, status, message string) error
}

type amqpBroker struct {
	conn *amqp.Connection
}

func (b *amqpBroker) PublishJob(job TailoringJob) error {
	return publishTailoringJob(b.conn, job)
}

func (b *amqpBroker) PublishUpdate(id uuid.UUID, status, message string) error {
	return publishTailoringUpdate(b.conn, id, status, message)
}

func publishTailoringJob(rabbitConn *amqp.Connection, job TailoringJob) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := declareTailoringsQueue(ch); err != nil {
		return err
	}
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return ch.Publish(
		"",              // default exchange
		tailoringsQueue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func declareTailoringsQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		tailoringsQueue, // queue name
		true,            // durable (survives broker restarts)
		false,           // auto-delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
}

func publishTailoringUpdate(rabbitConn *amqp.Connection, id uuid.UUID, status, message string) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(tailoringUpdateExchange, "topic", true, false, false, false, nil)
	if err != nil {
		return err
	}
	body, _ := json.Marshal(map[string]any{
		"tailoring_id": id,
		"status":       status,
		"message":      message,
		"timestamp":    time.Now(),
	})
	routingKey := fmt.Sprintf("tailoring.%s", id)

	return ch.Publish(
		tailoringUpdateExchange, // exchange
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
