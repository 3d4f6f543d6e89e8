package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

func (sm *SecretManager) GetDatabaseCredentials() (string, error) {
	secret, err := sm.client.Logical().Read("secret/data/database")
	if err != nil {
		return "", err
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault: unexpected secret format at secret/data/database")
	}
	connStr, _ := data["connection_string"].(string)
	return connStr, nil
}

// GetGatewayCredentials reads the credential map for one payment provider,
// e.g. secret/data/gateways/stripe.
func (sm *SecretManager) GetGatewayCredentials(gateway string) (map[string]string, error) {
	secret, err := sm.client.Logical().Read("secret/data/gateways/" + gateway)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, fmt.Errorf("vault: no credentials for gateway %s", gateway)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("vault: unexpected secret format for gateway %s", gateway)
	}

	creds := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			creds[k] = s
		}
	}
	return creds, nil
}
