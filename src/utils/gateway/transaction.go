package gateway

import (
	"crypto/sha256"
	"encoding/base64"
	"strconv"

	"github.com/permadoc/permadoc/src/utils/bundle"
)

// A single chunk is the most a directly submitted transaction may carry.
// Bigger payloads go through the bundler path which chunks for us.
const MaxChunkSize = 256 * 1024

type TxTag struct {
	Name  bundle.Base64String `json:"name"`
	Value bundle.Base64String `json:"value"`
}

// Format 2 protocol transaction, built and signed locally.
// Used as the fallback when no bundling service is reachable.
type Transaction struct {
	Format    int                 `json:"format"`
	ID        string              `json:"id"`
	LastTx    string              `json:"last_tx"`
	Owner     bundle.Base64String `json:"owner"`
	Tags      []TxTag             `json:"tags"`
	Target    string              `json:"target"`
	Quantity  string              `json:"quantity"`
	Data      bundle.Base64String `json:"data"`
	DataSize  string              `json:"data_size"`
	DataRoot  bundle.Base64String `json:"data_root"`
	Reward    string              `json:"reward"`
	Signature bundle.Base64String `json:"signature"`
}

func NewTransaction(data []byte, tags bundle.Tags, anchor, reward string) (self *Transaction, err error) {
	if len(data) > MaxChunkSize {
		return nil, ErrDataTooBigForTx
	}

	self = new(Transaction)
	self.Format = 2
	self.LastTx = anchor
	self.Quantity = "0"
	self.Reward = reward
	self.Data = data
	self.DataSize = strconv.Itoa(len(data))
	self.DataRoot = dataRoot(data)

	self.Tags = make([]TxTag, 0, len(tags))
	for _, tag := range tags {
		self.Tags = append(self.Tags, TxTag{
			Name:  bundle.Base64String(tag.Name),
			Value: bundle.Base64String(tag.Value),
		})
	}

	return
}

// Merkle root over the data chunks.
// With at most one chunk the root is the leaf hash.
func dataRoot(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}

	dataHash := sha256.Sum256(data)

	// Note is the end byte offset of the chunk
	note := make([]byte, 32)
	offset := len(data)
	for i := len(note) - 1; i >= 0; i-- {
		note[i] = byte(offset & 0xff)
		offset >>= 8
	}

	hashedData := sha256.Sum256(dataHash[:])
	hashedNote := sha256.Sum256(note)
	leaf := sha256.Sum256(append(hashedData[:], hashedNote[:]...))

	return leaf[:]
}

func (self *Transaction) signatureData() []any {
	tags := make([]any, 0, len(self.Tags))
	for _, tag := range self.Tags {
		tags = append(tags, []any{tag.Name, tag.Value})
	}

	anchor, _ := base64.RawURLEncoding.DecodeString(self.LastTx)
	target, _ := base64.RawURLEncoding.DecodeString(self.Target)

	return []any{
		strconv.Itoa(self.Format),
		self.Owner,
		target,
		self.Quantity,
		self.Reward,
		anchor,
		tags,
		self.DataSize,
		self.DataRoot,
	}
}

func (self *Transaction) Sign(signer bundle.Signer) (err error) {
	self.Owner = signer.GetOwner()

	deepHash := bundle.DeepHash(self.signatureData())
	digest := sha256.Sum256(deepHash[:])

	self.Signature, err = signer.Sign(digest[:])
	if err != nil {
		return
	}

	idArray := sha256.Sum256(self.Signature)
	self.ID = base64.RawURLEncoding.EncodeToString(idArray[:])

	return
}

func (self *Transaction) VerifySignature() (err error) {
	deepHash := bundle.DeepHash(self.signatureData())
	digest := sha256.Sum256(deepHash[:])

	return bundle.VerifyOwner(self.Owner, digest[:], self.Signature)
}
