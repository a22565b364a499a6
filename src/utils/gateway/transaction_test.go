package gateway

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"

	"github.com/permadoc/permadoc/src/utils/bundle"
	"github.com/permadoc/permadoc/src/utils/tool"

	"github.com/lestrrat-go/jwx/jwk"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestTransactionTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionTestSuite))
}

type TransactionTestSuite struct {
	suite.Suite
	signer *bundle.ArweaveSigner
}

func (s *TransactionTestSuite) SetupSuite() {
	key, err := rsa.GenerateKey(rand.Reader, 4096)
	require.Nil(s.T(), err)

	jwkKey, err := jwk.New(key)
	require.Nil(s.T(), err)

	buf, err := json.Marshal(jwkKey)
	require.Nil(s.T(), err)

	s.signer, err = bundle.NewArweaveSigner(string(buf))
	require.Nil(s.T(), err)
}

func (s *TransactionTestSuite) TestSignAndVerify() {
	tx, err := NewTransaction([]byte("direct upload"),
		bundle.Tags{{Name: "App-Name", Value: "Permadoc"}},
		bundle.Base64String(tool.RandomBytes(32)).String(),
		"1000")
	require.Nil(s.T(), err)
	require.Equal(s.T(), 2, tx.Format)
	require.Equal(s.T(), "13", tx.DataSize)

	err = tx.Sign(s.signer)
	require.Nil(s.T(), err)
	require.NotEmpty(s.T(), tx.ID)
	require.NotEmpty(s.T(), tx.Signature)

	err = tx.VerifySignature()
	require.Nil(s.T(), err)
}

func (s *TransactionTestSuite) TestVerifyRejectsTamperedReward() {
	tx, err := NewTransaction([]byte("data"), nil, "", "1000")
	require.Nil(s.T(), err)

	err = tx.Sign(s.signer)
	require.Nil(s.T(), err)

	tx.Reward = "0"
	err = tx.VerifySignature()
	require.NotNil(s.T(), err)
}

func (s *TransactionTestSuite) TestRejectsTooBigData() {
	_, err := NewTransaction(make([]byte, MaxChunkSize+1), nil, "", "1000")
	require.Equal(s.T(), ErrDataTooBigForTx, err)
}
