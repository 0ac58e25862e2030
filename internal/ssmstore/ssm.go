// Package ssmstore implements cache.ParameterStore on AWS Systems Manager
// Parameter Store.
package ssmstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	awstypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

// API is the subset of *ssm.Client used by Store.
type API interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, in *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, in *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
}

// Store is safe for concurrent use; credentials, retries and timeouts are
// those of the SDK client.
type Store struct {
	api API
}

// New builds a client from the default AWS configuration chain. An empty
// region leaves region resolution to the SDK.
func New(ctx context.Context, region string) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewFromAPI(ssm.NewFromConfig(cfg)), nil
}

func NewFromAPI(api API) *Store {
	return &Store{api: api}
}

func (s *Store) GetParameter(ctx context.Context, name string, decrypt bool) (*cache.Parameter, error) {
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(decrypt),
	})
	if err != nil {
		return nil, translate(err)
	}
	p := out.Parameter
	if p == nil || p.Value == nil || p.LastModifiedDate == nil {
		return nil, fmt.Errorf("ssm parameter %s: missing value or last modified date", name)
	}
	return &cache.Parameter{
		Name:         name,
		Value:        aws.ToString(p.Value),
		LastModified: aws.ToTime(p.LastModifiedDate),
		Version:      p.Version,
	}, nil
}

// PutParameter returns SDK errors unchanged.
func (s *Store) PutParameter(ctx context.Context, in cache.PutParameterInput) (*cache.WriteAck, error) {
	req := &ssm.PutParameterInput{
		Name:      aws.String(in.Name),
		Value:     aws.String(in.Value),
		Type:      awstypes.ParameterType(in.Type),
		Overwrite: aws.Bool(in.Overwrite),
	}
	if in.KeyID != "" {
		req.KeyId = aws.String(in.KeyID)
	}
	out, err := s.api.PutParameter(ctx, req)
	if err != nil {
		return nil, err
	}
	return &cache.WriteAck{Version: out.Version, Tier: string(out.Tier)}, nil
}

func (s *Store) DeleteParameter(ctx context.Context, name string) error {
	_, err := s.api.DeleteParameter(ctx, &ssm.DeleteParameterInput{Name: aws.String(name)})
	return translate(err)
}

// translate maps ParameterNotFound onto cache.ErrNotFound, keeping the
// SDK error reachable through errors.As.
func translate(err error) error {
	var nf *awstypes.ParameterNotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %w", cache.ErrNotFound, err)
	}
	return err
}

var _ cache.ParameterStore = (*Store)(nil)
