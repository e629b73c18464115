package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/postflow/configs"
	"github.com/maheshrc27/postflow/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ObjectPutter is the slice of the S3 API used for schedule exports.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ScheduleExporter interface {
	Upload(ctx context.Context, snapshot transfer.ScheduleSnapshot) (*transfer.ScheduleExport, error)
}

type R2Service struct {
	config cfg.R2
	client ObjectPutter
}

func NewR2Service(ctx context.Context, c cfg.Config) (*R2Service, error) {
	client, err := R2Client(ctx, c.R2)
	if err != nil {
		return nil, err
	}
	return newR2Service(c.R2, client), nil
}

func newR2Service(c cfg.R2, client ObjectPutter) *R2Service {
	return &R2Service{config: c, client: client}
}

func R2Client(ctx context.Context, r2 cfg.R2) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("loading r2 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	}), nil
}

// Upload writes the snapshot as JSON under schedules/<user>/ and returns where it can be fetched.
func (r *R2Service) Upload(ctx context.Context, snapshot transfer.ScheduleSnapshot) (*transfer.ScheduleExport, error) {
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schedule snapshot: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generating export id: %w", err)
	}
	key := fmt.Sprintf("schedules/%d/%s.json", snapshot.UserID, id)

	if err := r.UploadToR2(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("uploading schedule snapshot: %w", err)
	}

	return &transfer.ScheduleExport{
		Key:         key,
		URL:         r.PublicURL(key),
		GeneratedAt: snapshot.GeneratedAt,
		SlotCount:   len(snapshot.Slots),
	}, nil
}

func (r *R2Service) UploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:       aws.String(r.config.BucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(file),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(fmt.Sprintf("max-age=%d", int(time.Hour.Seconds()))),
	}

	_, err := r.client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *R2Service) PublicURL(key string) string {
	if r.config.PublicURL != "" {
		return strings.TrimRight(r.config.PublicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s/%s", r.config.AccountID, r.config.BucketName, key)
}
