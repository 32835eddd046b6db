package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ResolveSenders loads the private keys declared in the config from
// the environment. Keys never appear in chainstep.toml itself.
func (c *ChainstepConfig) ResolveSenders() (map[string]*Sender, error) {
	senders := make(map[string]*Sender, len(c.Senders))
	for name, sc := range c.Senders {
		raw := os.Getenv(sc.PrivateKeyEnv)
		if raw == "" {
			return nil, fmt.Errorf("sender %q: env var %s is not set", name, sc.PrivateKeyEnv)
		}

		key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
		if err != nil {
			return nil, fmt.Errorf("sender %q: invalid private key in %s: %w", name, sc.PrivateKeyEnv, err)
		}

		senders[name] = &Sender{
			Name:    name,
			Address: crypto.PubkeyToAddress(key.PublicKey),
			Key:     key,
		}
	}
	return senders, nil
}
