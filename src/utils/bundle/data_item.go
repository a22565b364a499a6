package bundle

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/permadoc/permadoc/src/utils/tool"
)

// A single signed payload in the ANS-104 binary format.
// Immutable once signed, the id is derived from the signature.
type DataItem struct {
	SignatureType SignatureType `json:"signature_type"`
	Signature     Base64String  `json:"signature"`
	Owner         Base64String  `json:"owner"`  // public key of the signer
	Target        Base64String  `json:"target"` // optional, 32 bytes when present
	Anchor        Base64String  `json:"anchor"` // optional, 32 bytes when present
	Tags          Tags          `json:"tags"`
	Data          Base64String  `json:"data"`
	Id            Base64String  `json:"id"`

	// Not in the standard, used internally
	tagsBytes []byte
}

var sigConfig = map[SignatureType]struct {
	Signature int
	Owner     int
	Verify    func(owner, digest, signature []byte) error
}{
	SignatureTypeArweave: {
		Signature: 512,
		Owner:     512,
		Verify:    verifyArweave,
	},
	SignatureTypeEthereum: {
		Signature: 65,
		Owner:     65,
		Verify:    verifyEthereum,
	},
}

func (self *DataItem) ensureTagsSerialized() (err error) {
	if len(self.tagsBytes) != 0 || len(self.Tags) == 0 {
		return nil
	}
	self.tagsBytes, err = self.Tags.Marshal()
	if err != nil {
		return err
	}
	return nil
}

func (self *DataItem) IsSigned() bool {
	return len(self.Signature) > 0 && len(self.Id) > 0
}

func (self *DataItem) Size() (out int) {
	conf, ok := sigConfig[self.SignatureType]
	if !ok {
		return -1
	}

	out = 2 + conf.Signature + conf.Owner + 1 + 1 + 16 + len(self.Data)
	if len(self.Target) > 0 {
		out += len(self.Target)
	}
	if len(self.Anchor) > 0 {
		out += len(self.Anchor)
	}

	err := self.ensureTagsSerialized()
	if err != nil {
		return -1
	}

	out += len(self.tagsBytes)

	return
}

// Computes the digest that gets signed.
// The id is the hash of the resulting signature.
func (self *DataItem) digest() (out []byte, err error) {
	err = self.ensureTagsSerialized()
	if err != nil {
		return
	}

	values := []any{
		"dataitem",
		"1",
		self.SignatureType.Bytes(),
		self.Owner,
		self.Target,
		self.Anchor,
		self.tagsBytes,
		self.Data,
	}

	deepHash := DeepHash(values)
	hashed := sha256.Sum256(deepHash[:])
	out = hashed[:]
	return
}

func (self *DataItem) Sign(signer Signer) (err error) {
	if signer == nil {
		return ErrSignerNotSpecified
	}

	self.SignatureType = signer.GetType()
	self.Owner = signer.GetOwner()

	digest, err := self.digest()
	if err != nil {
		return
	}

	self.Signature, err = signer.Sign(digest)
	if err != nil {
		return
	}

	idArray := sha256.Sum256(self.Signature)
	self.Id = idArray[:]

	return
}

func (self *DataItem) Reader() (out *bytes.Buffer, err error) {
	if !self.IsSigned() {
		return nil, ErrItemNotSigned
	}

	// Don't try to allocate more than 4kB. Buffer will grow if needed anyway.
	initSize := tool.Min(4096, tool.Max(0, self.Size()))
	out = bytes.NewBuffer(make([]byte, 0, initSize))

	err = self.Encode(out)
	return
}

func (self *DataItem) Encode(out *bytes.Buffer) (err error) {
	err = self.ensureTagsSerialized()
	if err != nil {
		return
	}

	if !self.IsSigned() {
		return ErrItemNotSigned
	}

	// Serialization
	out.Write(ShortTo2ByteArray(int(self.SignatureType)))
	out.Write(self.Signature)
	out.Write(self.Owner)

	// Optional target
	if len(self.Target) == 0 {
		out.WriteByte(0)
	} else {
		out.WriteByte(1)
		out.Write(self.Target)
	}

	// Optional anchor
	if len(self.Anchor) == 0 {
		out.WriteByte(0)
	} else {
		out.WriteByte(1)
		out.Write(self.Anchor)
	}

	// Rest
	out.Write(LongTo8ByteArray(len(self.Tags)))
	out.Write(LongTo8ByteArray(len(self.tagsBytes)))
	out.Write(self.tagsBytes)
	out.Write(self.Data)

	return
}

func (self *DataItem) Unmarshal(buf []byte) (err error) {
	reader := bytes.NewReader(buf)
	return self.UnmarshalFromReader(reader)
}

// Reverse operation of Encode
func (self *DataItem) UnmarshalFromReader(reader io.Reader) (err error) {
	// Signature type
	signatureType := make([]byte, 2)
	_, err = io.ReadFull(reader, signatureType)
	if err != nil {
		return ErrNotEnoughBytesForSignatureType
	}
	self.SignatureType = SignatureType(binary.LittleEndian.Uint16(signatureType))

	conf, ok := sigConfig[self.SignatureType]
	if !ok {
		return ErrUnsupportedSignType
	}

	// Signature (different length depending on the signature type)
	self.Signature = make([]byte, conf.Signature)
	_, err = io.ReadFull(reader, self.Signature)
	if err != nil {
		return ErrNotEnoughBytesForSignature
	}

	// Owner - public key (different length depending on the signature type)
	self.Owner = make([]byte, conf.Owner)
	_, err = io.ReadFull(reader, self.Owner)
	if err != nil {
		return ErrNotEnoughBytesForOwner
	}

	// Target (it's optional)
	isTargetPresent := make([]byte, 1)
	_, err = io.ReadFull(reader, isTargetPresent)
	if err != nil {
		return ErrNotEnoughBytesForTargetFlag
	}

	if isTargetPresent[0] == 0 {
		self.Target = []byte{}
	} else {
		self.Target = make([]byte, 32)
		_, err = io.ReadFull(reader, self.Target)
		if err != nil {
			return ErrNotEnoughBytesForTarget
		}
	}

	// Anchor (it's optional)
	isAnchorPresent := make([]byte, 1)
	_, err = io.ReadFull(reader, isAnchorPresent)
	if err != nil {
		return ErrNotEnoughBytesForAnchorFlag
	}

	if isAnchorPresent[0] == 0 {
		self.Anchor = []byte{}
	} else {
		self.Anchor = make([]byte, 32)
		_, err = io.ReadFull(reader, self.Anchor)
		if err != nil {
			return ErrNotEnoughBytesForAnchor
		}
	}

	// Length of the tags slice
	numTagsBuffer := make([]byte, 8)
	_, err = io.ReadFull(reader, numTagsBuffer)
	if err != nil {
		return ErrNotEnoughBytesForNumberOfTags
	}
	numTags := int(binary.LittleEndian.Uint64(numTagsBuffer))

	// Size of encoded tags
	numTagsBytesBuffer := make([]byte, 8)
	_, err = io.ReadFull(reader, numTagsBytesBuffer)
	if err != nil {
		return ErrNotEnoughBytesForTagBytes
	}
	numTagsBytes := int(binary.LittleEndian.Uint64(numTagsBytesBuffer))

	// Tags
	self.Tags = make(Tags, 0, numTags)
	if numTags > 0 {
		self.tagsBytes = make([]byte, numTagsBytes)
		_, err = io.ReadFull(reader, self.tagsBytes)
		if err != nil {
			return ErrNotEnoughBytesForTags
		}

		err = self.Tags.Unmarshal(self.tagsBytes)
		if err != nil {
			return
		}
	}

	// The rest is just data
	var data bytes.Buffer
	_, err = data.ReadFrom(reader)
	if err != nil {
		return
	}
	self.Data = data.Bytes()

	// Id is derived from the signature
	idArray := sha256.Sum256(self.Signature)
	self.Id = idArray[:]

	return
}

// https://github.com/ArweaveTeam/arweave-standards/blob/master/ans/ANS-104.md#21-verifying-a-dataitem
func (self *DataItem) Verify() (err error) {
	idArray := sha256.Sum256(self.Signature)
	if !bytes.Equal(idArray[:], self.Id) {
		return ErrVerifyIdSignatureMismatch
	}

	// an anchor isn't more than 32 bytes
	// with this lib it has to be 0 or 32 bytes
	if len(self.Anchor) != 0 && len(self.Anchor) != 32 {
		return ErrVerifyBadAnchorLength
	}

	// Tags
	if len(self.Tags) > 128 {
		return ErrVerifyTooManyTags
	}

	for _, tag := range self.Tags {
		if len(tag.Name) == 0 {
			return ErrVerifyEmptyTagName
		}
		if len(tag.Name) > 1024 {
			return ErrVerifyTooLongTagName
		}
		if len(tag.Value) == 0 {
			return ErrVerifyEmptyTagValue
		}
		if len(tag.Value) > 3072 {
			return ErrVerifyTooLongTagValue
		}
	}

	return self.VerifySignature()
}

func (self *DataItem) VerifySignature() (err error) {
	digest, err := self.digest()
	if err != nil {
		return
	}

	conf, ok := sigConfig[self.SignatureType]
	if !ok {
		return ErrUnsupportedSignType
	}

	return conf.Verify(self.Owner, digest, self.Signature)
}
