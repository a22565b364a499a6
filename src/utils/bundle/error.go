package bundle

import "errors"

var (
	ErrSignerNotSpecified  = errors.New("signer not specified")
	ErrItemNotSigned       = errors.New("data item is not signed")
	ErrBufferTooSmall      = errors.New("buffer too small")
	ErrUnsupportedSignType = errors.New("unsupported signature type")

	ErrNotEnoughBytesForSignatureType = errors.New("not enough bytes for the signature type")
	ErrNotEnoughBytesForSignature     = errors.New("not enough bytes for the signature")
	ErrNotEnoughBytesForOwner         = errors.New("not enough bytes for the owner")
	ErrNotEnoughBytesForTargetFlag    = errors.New("not enough bytes for the target flag")
	ErrNotEnoughBytesForTarget        = errors.New("not enough bytes for the target")
	ErrNotEnoughBytesForAnchorFlag    = errors.New("not enough bytes for the anchor flag")
	ErrNotEnoughBytesForAnchor        = errors.New("not enough bytes for the anchor")
	ErrNotEnoughBytesForNumberOfTags  = errors.New("not enough bytes for the number of tags")
	ErrNotEnoughBytesForTagBytes      = errors.New("not enough bytes for the number of tag bytes")
	ErrNotEnoughBytesForTags          = errors.New("not enough bytes for tags")

	ErrVerifyIdSignatureMismatch = errors.New("id doesn't match signature")
	ErrVerifyBadAnchorLength     = errors.New("anchor must be 32 bytes long")
	ErrVerifyTooManyTags         = errors.New("too many tags")
	ErrVerifyEmptyTagName        = errors.New("tag name is empty")
	ErrVerifyTooLongTagName      = errors.New("tag name too long")
	ErrVerifyEmptyTagValue       = errors.New("tag value is empty")
	ErrVerifyTooLongTagValue     = errors.New("tag value too long")

	ErrUnmarshalEthereumPubKey      = errors.New("failed to unmarshal ethereum public key")
	ErrEthereumSignatureMismatch    = errors.New("ethereum signature mismatch")
	ErrFailedToParseEthereumPubKey  = errors.New("failed to parse ethereum public key")
	ErrTooManyKeysInWallet          = errors.New("too many keys in signer's wallet")
	ErrNotRsaPrivateKey             = errors.New("wallet key is not an RSA private key")
	ErrBundleTooShort               = errors.New("not enough bytes for the bundle header")
	ErrBundleItemSizeMismatch       = errors.New("bundle item size doesn't match the header")
	ErrBundleItemIdMismatch         = errors.New("bundle item id doesn't match the header")
)
