package eventbus

import (
	"fmt"
	"strings"

	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// NKeyOption authenticates the connection with a user nkey seed.
func NKeyOption(seed string) (nc.Option, error) {
	kp, err := nkeys.FromSeed([]byte(strings.TrimSpace(seed)))
	if err != nil {
		return nil, fmt.Errorf("invalid nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	return nc.Nkey(pub, kp.Sign), nil
}
