package bundle

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"math/big"

	"github.com/lestrrat-go/jwx/jwk"
)

// Holds key material and signs data item digests on the client's behalf
type Signer interface {
	Sign(digest []byte) (signature []byte, err error)
	Verify(digest []byte, signature []byte) (err error)
	GetOwner() []byte
	GetType() SignatureType
	GetSignatureLength() int
	GetOwnerLength() int
}

// RSA-PSS signer initialized from a JWK wallet file
type ArweaveSigner struct {
	PrivateKey *rsa.PrivateKey
	Owner      []byte
}

func NewArweaveSigner(walletJWK string) (self *ArweaveSigner, err error) {
	self = new(ArweaveSigner)

	// Parse the private key
	set, err := jwk.Parse([]byte(walletJWK))
	if err != nil {
		return
	}
	if set.Len() != 1 {
		err = ErrTooManyKeysInWallet
		return
	}

	key, ok := set.Get(0)
	if !ok {
		err = ErrNotRsaPrivateKey
		return
	}

	var rawkey interface{}
	err = key.Raw(&rawkey)
	if err != nil {
		return
	}

	self.PrivateKey, ok = rawkey.(*rsa.PrivateKey)
	if !ok {
		err = ErrNotRsaPrivateKey
		return
	}

	self.Owner = self.PrivateKey.PublicKey.N.Bytes()

	return
}

func (self *ArweaveSigner) Sign(digest []byte) (signature []byte, err error) {
	return rsa.SignPSS(rand.Reader, self.PrivateKey, crypto.SHA256, digest, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
		Hash:       crypto.SHA256,
	})
}

func (self *ArweaveSigner) Verify(digest []byte, signature []byte) (err error) {
	return verifyArweave(self.Owner, digest, signature)
}

func (self *ArweaveSigner) GetOwner() []byte {
	return self.Owner
}

func (self *ArweaveSigner) GetType() SignatureType {
	return SignatureTypeArweave
}

func (self *ArweaveSigner) GetSignatureLength() int {
	return 512
}

func (self *ArweaveSigner) GetOwnerLength() int {
	return 512
}

// Verifies an RSA-PSS signature against the raw owner key
func VerifyOwner(owner, digest, signature []byte) error {
	return verifyArweave(owner, digest, signature)
}

func verifyArweave(owner, digest, signature []byte) error {
	ownerPublicKey := &rsa.PublicKey{
		N: new(big.Int).SetBytes(owner),
		E: 65537, //"AQAB"
	}

	return rsa.VerifyPSS(ownerPublicKey, crypto.SHA256, digest, signature, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
		Hash:       crypto.SHA256,
	})
}
