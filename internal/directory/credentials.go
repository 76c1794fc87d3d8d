package directory

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"
)

// Scopes are the only permissions requested for the service credential.
var Scopes = []string{
	admin.AdminDirectoryUserReadonlyScope,
	admin.AdminDirectoryRolemanagementReadonlyScope,
}

// credentials resolves the service credential. A key file takes precedence
// over application default credentials; Impersonate sets the delegated subject.
func credentials(ctx context.Context, cfg Config) (*google.Credentials, error) {
	params := google.CredentialsParams{
		Scopes:  Scopes,
		Subject: cfg.Impersonate,
	}
	if cfg.CredentialsFile == "" {
		creds, err := google.FindDefaultCredentialsWithParams(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("directory: default credentials: %w", err)
		}
		return creds, nil
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("directory: read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSONWithParams(ctx, data, params)
	if err != nil {
		return nil, fmt.Errorf("directory: parse credentials: %w", err)
	}
	return creds, nil
}

func clientOptions(ctx context.Context, cfg Config) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.WithoutAuth {
		return append(opts, option.WithoutAuthentication()), nil
	}
	creds, err := credentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return append(opts, option.WithCredentials(creds)), nil
}
