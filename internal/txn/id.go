package txn

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/restic/firestoremock/internal/errors"
)

// idSize is the transaction ID length in bytes (256 bits), per §4.6.
const idSize = 32

// newID generates a random opaque transaction ID and its base64 registry
// key.
func newID() (id []byte, key string, err error) {
	id = make([]byte, idSize)
	if _, err := rand.Read(id); err != nil {
		return nil, "", errors.Wrap(err, "generate transaction id")
	}
	return id, base64.StdEncoding.EncodeToString(id), nil
}
