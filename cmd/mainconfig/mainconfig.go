package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/wolfman30/landing-intake/internal/config"
)

// r2Region is the signing region Cloudflare R2 expects for every bucket.
const r2Region = "auto"

// LoadAWSConfig builds the SDK config used by the SES email sender.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
}

// LoadStorageConfig builds the SDK config for the R2 bucket. Static R2 keys win
// over the default credential chain when both are set.
func LoadStorageConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(r2Region)}
	if strings.TrimSpace(cfg.R2AccessKeyID) != "" && strings.TrimSpace(cfg.R2SecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// StorageOptions points the S3 client at the R2 endpoint using path-style addressing.
func StorageOptions(cfg *appconfig.Config) func(*s3.Options) {
	endpoint := cfg.StorageEndpoint()
	return func(o *s3.Options) {
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}
}

// NewStorageClient returns the S3 client used for file intake.
func NewStorageClient(ctx context.Context, cfg *appconfig.Config) (*s3.Client, error) {
	awsCfg, err := LoadStorageConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, StorageOptions(cfg)), nil
}
