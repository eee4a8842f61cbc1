// internal/infra/secrets/secretmanager.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var ErrNotConfigured = errors.New("secrets: secret manager not configured")

// Provider reads secret payloads from Secret Manager.
type Provider struct {
	sm        *secretmanager.Client
	projectID string
}

func NewProvider(sm *secretmanager.Client, projectID string) *Provider {
	return &Provider{sm: sm, projectID: strings.TrimSpace(projectID)}
}

// Access returns the trimmed payload of secretID. secretID may be a bare id
// ("sendgrid-api-key"), "id:version", or a full resource name.
func (p *Provider) Access(ctx context.Context, secretID string) (string, error) {
	if p == nil || p.sm == nil {
		return "", ErrNotConfigured
	}
	name, err := p.resourceName(secretID)
	if err != nil {
		return "", err
	}

	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("secrets: access %s: %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("secrets: empty payload (%s)", name)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

func (p *Provider) resourceName(secretID string) (string, error) {
	id := strings.TrimSpace(secretID)
	if id == "" {
		return "", errors.New("secrets: secret id is empty")
	}
	if strings.HasPrefix(id, "projects/") {
		if !strings.Contains(id, "/versions/") {
			id += "/versions/latest"
		}
		return id, nil
	}
	if p.projectID == "" {
		return "", errors.New("secrets: projectID is empty")
	}
	version := "latest"
	if i := strings.LastIndex(id, ":"); i > 0 {
		id, version = id[:i], id[i+1:]
	}
	return "projects/" + p.projectID + "/secrets/" + id + "/versions/" + version, nil
}

// Resolve prefers a direct value and falls back to the secret (empty secretID
// means "no secret configured").
func (p *Provider) Resolve(ctx context.Context, direct, secretID string) (string, error) {
	if v := strings.TrimSpace(direct); v != "" {
		return v, nil
	}
	if strings.TrimSpace(secretID) == "" {
		return "", nil
	}
	return p.Access(ctx, secretID)
}
