package mainconfig

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/landing-intake/internal/config"
)

func TestLoadStorageConfig_UsesStaticR2Keys(t *testing.T) {
	cfg := &appconfig.Config{R2AccessKeyID: "AKID", R2SecretAccessKey: "SECRET"}

	awsCfg, err := LoadStorageConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "auto", awsCfg.Region)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
	assert.Equal(t, "SECRET", creds.SecretAccessKey)
}

func TestStorageOptions_SetsEndpointAndPathStyle(t *testing.T) {
	cfg := &appconfig.Config{R2AccountID: "acct"}
	var opts s3.Options

	StorageOptions(cfg)(&opts)

	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestStorageOptions_NoEndpointLeavesDefaults(t *testing.T) {
	var opts s3.Options

	StorageOptions(&appconfig.Config{})(&opts)

	assert.Nil(t, opts.BaseEndpoint)
	assert.False(t, opts.UsePathStyle)
}
