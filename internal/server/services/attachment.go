package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/dbx"
	sc "github.com/dmitrijs2005/mailbox/internal/server/config"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
	"github.com/dmitrijs2005/mailbox/internal/server/repositories/repomanager"
)

// presignExpiry bounds how long a presigned URL stays usable.
const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *AttachmentService {
	return &AttachmentService{
		db:          db,
		repomanager: m,
		config:      cfg,
	}
}

// GetRandomStorageKey produces a date-partitioned object key for a new upload.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("attachments/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *AttachmentService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// Add records attachment metadata on one of the user's messages and returns
// the stored attachment together with a presigned PUT URL the client uploads
// the file body to. The ownership check and the metadata insert run in one
// transaction so a concurrent message delete cannot orphan the row.
func (s *AttachmentService) Add(ctx context.Context, userID, msgID, fileName string, size int64) (*models.Attachment, string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, "", err
	}

	att := &models.Attachment{
		MessageID:  msgID,
		UserID:     userID,
		FileName:   fileName,
		Size:       size,
		StorageKey: key,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		msgRepo := s.repomanager.Messages(tx)
		if _, err := msgRepo.GetByID(ctx, userID, msgID); err != nil {
			return err
		}

		repo := s.repomanager.Attachments(tx)
		att, err = repo.Create(ctx, att)
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorNotFound
		}
		return nil, "", fmt.Errorf("error creating attachment: %w", err)
	}

	return att, req.URL, nil
}

// ListForMessage returns the attachment metadata of one of the user's messages.
func (s *AttachmentService) ListForMessage(ctx context.Context, userID, msgID string) ([]*models.Attachment, error) {

	msgRepo := s.repomanager.Messages(s.db)
	if _, err := msgRepo.GetByID(ctx, userID, msgID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Attachments(s.db)

	result, err := repo.ListByMessage(ctx, userID, msgID)
	if err != nil {
		return nil, fmt.Errorf("error listing attachments: %w", err)
	}

	return result, nil
}

// DownloadURL returns a short-lived presigned GET URL for one of the user's
// attachments. Ownership is enforced by the scoped metadata lookup.
func (s *AttachmentService) DownloadURL(ctx context.Context, userID, attID string) (string, error) {

	repo := s.repomanager.Attachments(s.db)

	att, err := repo.GetByID(ctx, userID, attID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &att.StorageKey,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
