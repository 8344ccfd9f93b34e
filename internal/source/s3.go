package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sitelens/sitelens/internal/domain"
)

// S3Config holds connection settings for an S3-compatible object store.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// s3API is the subset of the S3 client used by the source.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 scans an object-store prefix for documents, mirroring the filesystem
// source for corpora that live in a bucket instead of on disk.
type S3 struct {
	client     s3API
	bucket     string
	prefix     string
	pdfDerived bool
}

// NewS3 connects to the object store described by cfg and scans the given key
// prefix.
func NewS3(ctx context.Context, cfg S3Config, prefix string, pdfDerived bool) (*S3, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3{
		client:     client,
		bucket:     cfg.Bucket,
		prefix:     prefix,
		pdfDerived: pdfDerived,
	}, nil
}

// Scan lists every recognized object under the prefix and fetches its
// content. Object keys double as stable document IDs. Metadata sidecars are
// objects named <stem>.json next to the document object.
func (s *S3) Scan(ctx context.Context) ([]*domain.Document, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list objects in %s/%s: %w", s.bucket, s.prefix, err)
	}

	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}

	var docs []*domain.Document
	for _, key := range keys {
		st, ok := sourceTypeFor(key, s.pdfDerived)
		if !ok {
			continue
		}
		// A .json object that is another document's sidecar is metadata,
		// not a document of its own.
		if strings.HasSuffix(key, ".json") && isSidecar(key, keySet) {
			continue
		}

		content, err := s.fetch(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", key, err)
		}

		var metadata map[string]string
		sidecar := objectStem(key) + ".json"
		if _, exists := keySet[sidecar]; exists && sidecar != key {
			if raw, err := s.fetch(ctx, sidecar); err == nil {
				metadata = flattenMetadata(raw)
			}
		}

		docs = append(docs, buildDocument(key, key, content, st, metadata))
	}
	return docs, nil
}

func (s *S3) listKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var continuation *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}
	return keys, nil
}

func (s *S3) fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// isSidecar reports whether a .json key shadows a sibling document object.
// isSidecar reports whether a .json key shadows a document with the same stem
// in the same scan.
func isSidecar(key string, keySet map[string]struct{}) bool {
	stem := objectStem(key)
	for _, ext := range []string{".md", ".markdown", ".txt", ".html", ".htm"} {
		if _, ok := keySet[stem+ext]; ok {
			return true
		}
	}
	return false
}

func objectStem(key string) string {
	if idx := strings.LastIndex(key, "."); idx > strings.LastIndex(key, "/") {
		return key[:idx]
	}
	return key
}
