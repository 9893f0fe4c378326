package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/sqlinline"
)

const (
	ProviderAssetGen = "assetgen"
)

// Store reads and writes provider credentials in the integration_tokens
// table. Database-held keys take precedence over environment configuration so
// operators can rotate them without a redeploy.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) AssetGenAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderAssetGen)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetAssetGenAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("assetgen api key is required")
	}
	return s.upsert(ctx, ProviderAssetGen, key, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
