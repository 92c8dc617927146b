package main

import (
	"database/sql"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/muhammadolammi/cvcustomizer/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

// AppConfig carries the live dependencies shared by the server, the worker
// pool and the CLI. DB, R2, RabbitConn and Broker are nil when not
// configured.
type AppConfig struct {
	DB                *database.Queries
	R2                *R2Config
	AwsConfig         *aws.Config
	RabbitConn        *amqp.Connection
	Broker            Broker
	RABBITMQUrl       string
	Completer         Completer
	GenerationTimeout time.Duration
	AllowedOrigin     string
	Logger            *logrus.Logger
}

// DocumentKind names one of the two generated documents.
type DocumentKind string

const (
	DocumentResume      DocumentKind = "resume"
	DocumentCoverLetter DocumentKind = "coverLetter"
)

// Filename returns the suggested download name for the given extension.
func (k DocumentKind) Filename(ext string) string {
	switch k {
	case DocumentResume:
		return "tailored_resume." + ext
	case DocumentCoverLetter:
		return "cover_letter." + ext
	default:
		return "document." + ext
	}
}

type TailorRequest struct {
	CurrentResume  string `json:"currentResume"`
	JobDescription string `json:"jobDescription"`
}

type TailorResult struct {
	TailoredResume string `json:"tailoredResume"`
	CoverLetter    string `json:"coverLetter"`
}

type ExportRequest struct {
	Text     string       `json:"text"`
	Document DocumentKind `json:"document"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TailoringJob is the message body on the tailorings queue.
type TailoringJob struct {
	ID uuid.UUID `json:"id"`
}

type Tailoring struct {
	ID                uuid.UUID `json:"id"`
	Status            string    `json:"status"`
	TailoredResume    string    `json:"tailoredResume,omitempty"`
	CoverLetter       string    `json:"coverLetter,omitempty"`
	ResumePdfKey      string    `json:"resumePdfKey,omitempty"`
	CoverLetterPdfKey string    `json:"coverLetterPdfKey,omitempty"`
	Error             string    `json:"error,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func tailoringFromDB(t database.Tailoring) Tailoring {
	return Tailoring{
		ID:                t.ID,
		Status:            t.Status,
		TailoredResume:    nullString(t.TailoredResume),
		CoverLetter:       nullString(t.CoverLetter),
		ResumePdfKey:      nullString(t.ResumePdfKey),
		CoverLetterPdfKey: nullString(t.CoverLetterPdfKey),
		Error:             nullString(t.Error),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func nullString(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
