package ddb

import (
	"context"
	"fmt"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"talkboard-backend/internal/repository"
)

// FactoryConfig carries everything the factory needs to build a store.
type FactoryConfig struct {
	Region    string
	Endpoint  string // Optional override, used for local DynamoDB
	TableName string
	Retry     repository.RetryConfig
}

// Factory builds and caches a single store instance. Construction resolves
// AWS credentials lazily so wiring the factory at startup stays cheap, and
// Reset allows tests and long-lived processes to force a rebuild after a
// configuration change.
type Factory struct {
	mu     sync.Mutex
	config FactoryConfig
	logger *zap.Logger

	client *dynamodb.Client
	store  *Store
}

// NewFactory creates a factory. The store is not built until first use.
func NewFactory(config FactoryConfig, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{config: config, logger: logger}
}

// Store returns the cached store, building it on first call.
func (f *Factory) Store(ctx context.Context) (*Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.store != nil {
		return f.store, nil
	}

	client, err := f.buildClient(ctx)
	if err != nil {
		return nil, err
	}

	f.client = client
	f.store = NewStore(client, f.config.TableName, f.config.Retry, f.logger)
	f.logger.Info("dynamodb store initialized",
		zap.String("table", f.config.TableName),
		zap.String("region", f.config.Region),
	)
	return f.store, nil
}

// Client returns the cached raw DynamoDB client, building it on first call.
func (f *Factory) Client(ctx context.Context) (*dynamodb.Client, error) {
	if _, err := f.Store(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.client, nil
}

// Reset drops the cached client and store. The next call to Store rebuilds
// them from the current configuration.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.client = nil
	f.store = nil
}

func (f *Factory) buildClient(ctx context.Context) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if f.config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(f.config.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*dynamodb.Options){}
	if f.config.Endpoint != "" {
		endpoint := f.config.Endpoint
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = &endpoint
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}
