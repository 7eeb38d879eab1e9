package trust

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/toolreg/errors"
)

// AuditTrail keeps Ed25519-signed records of trust decisions.
type AuditTrail struct {
	sessionID  string
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey

	mu      sync.Mutex
	records []*Record
}

// NewAuditTrail creates an audit trail with a fresh keypair. An empty
// sessionID gets a random one.
func NewAuditTrail(sessionID string) (*AuditTrail, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generating audit keypair")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &AuditTrail{
		sessionID:  sessionID,
		publicKey:  pub,
		privateKey: priv,
	}, nil
}

// PublicKey returns the base64-encoded verification key.
func (a *AuditTrail) PublicKey() string {
	return base64.StdEncoding.EncodeToString(a.publicKey)
}

// SessionID returns the session identifier.
func (a *AuditTrail) SessionID() string {
	return a.sessionID
}

// Record is a signed trust decision.
type Record struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
	Name       string    `json:"name"`
	RemoteHash string    `json:"remote_hash"`
	Normalized string    `json:"normalized"`
	Canonical  string    `json:"canonical"`
	Trusted    bool      `json:"trusted"`
	Reason     string    `json:"reason"`
	Signature  string    `json:"signature,omitempty"`
}

// Record signs and stores d. The raw remote is kept only as a hash.
func (a *AuditTrail) Record(d Decision) *Record {
	r := &Record{
		ID:         uuid.NewString(),
		SessionID:  a.sessionID,
		Timestamp:  time.Now().UTC(),
		Name:       d.Name,
		RemoteHash: hashRemote(d.Remote),
		Normalized: d.Normalized,
		Canonical:  d.Canonical,
		Trusted:    d.Trusted,
		Reason:     d.Reason,
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.privateKey != nil {
		sum := sha256.Sum256(canonicalJSON(r))
		r.Signature = base64.StdEncoding.EncodeToString(ed25519.Sign(a.privateKey, sum[:]))
	}
	a.records = append(a.records, r)
	return r
}

// Records returns a snapshot of the recorded decisions.
func (a *AuditTrail) Records() []*Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.records)
}

// Destroy zeroes the private key. Records made afterwards are unsigned.
func (a *AuditTrail) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.privateKey {
		a.privateKey[i] = 0
	}
	a.privateKey = nil
}

// Verify checks r's signature against a base64-encoded public key.
func Verify(r *Record, publicKey string) (bool, error) {
	key, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return false, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "invalid public key")
	}
	if len(key) != ed25519.PublicKeySize {
		return false, errors.Newf(errors.ErrCodeInvalidInput, "invalid public key size: %d", len(key))
	}
	sig, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return false, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "invalid signature")
	}
	sum := sha256.Sum256(canonicalJSON(r))
	return ed25519.Verify(ed25519.PublicKey(key), sum[:], sig), nil
}

// canonicalJSON encodes every field but the signature with sorted keys.
func canonicalJSON(r *Record) []byte {
	m := map[string]string{
		"canonical":   r.Canonical,
		"id":          r.ID,
		"name":        r.Name,
		"normalized":  r.Normalized,
		"reason":      r.Reason,
		"remote_hash": r.RemoteHash,
		"session_id":  r.SessionID,
		"timestamp":   r.Timestamp.Format(time.RFC3339Nano),
		"trusted":     strconv.FormatBool(r.Trusted),
	}
	// encoding/json writes map keys in sorted order.
	b, _ := json.Marshal(m)
	return b
}

func hashRemote(remote string) string {
	sum := sha256.Sum256([]byte(remote))
	return base64.StdEncoding.EncodeToString(sum[:])
}
