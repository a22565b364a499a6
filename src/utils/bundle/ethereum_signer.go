package bundle

import (
	"bytes"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethereum_crypto "github.com/ethereum/go-ethereum/crypto"
)

type EthereumSigner struct {
	PrivateKey *ecdsa.PrivateKey
	Owner      []byte
}

func NewEthereumSigner(privateKeyHex string) (self *EthereumSigner, err error) {
	self = new(EthereumSigner)

	// Parse the private key
	buf, err := hexutil.Decode(privateKeyHex)
	if err != nil {
		return
	}

	self.PrivateKey, err = ethereum_crypto.ToECDSA(buf)
	if err != nil {
		return
	}

	return
}

func (self *EthereumSigner) Sign(digest []byte) (signature []byte, err error) {
	return ethereum_crypto.Sign(digest, self.PrivateKey)
}

func (self *EthereumSigner) Verify(digest []byte, signature []byte) (err error) {
	if len(self.Owner) == 0 {
		self.Owner = self.GetOwner()
	}

	return verifyEthereum(self.Owner, digest, signature)
}

func (self *EthereumSigner) GetOwner() []byte {
	publicKeyECDSA, ok := self.PrivateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		panic(ErrFailedToParseEthereumPubKey)
	}

	return ethereum_crypto.FromECDSAPub(publicKeyECDSA)
}

func (self *EthereumSigner) GetType() SignatureType {
	return SignatureTypeEthereum
}

func (self *EthereumSigner) GetSignatureLength() int {
	return 65
}

func (self *EthereumSigner) GetOwnerLength() int {
	return 65
}

func verifyEthereum(owner, digest, signature []byte) (err error) {
	// Convert owner to public key bytes
	publicKeyECDSA, err := ethereum_crypto.UnmarshalPubkey(owner)
	if err != nil {
		return ErrUnmarshalEthereumPubKey
	}
	publicKeyBytes := ethereum_crypto.FromECDSAPub(publicKeyECDSA)

	// Get the public key from the signature
	sigPublicKey, err := ethereum_crypto.Ecrecover(digest, signature)
	if err != nil {
		return
	}

	// Check if the public key recovered from the signature matches the owner
	if !bytes.Equal(sigPublicKey, publicKeyBytes) {
		return ErrEthereumSignatureMismatch
	}

	return
}
