package bundle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestNestTestSuite(t *testing.T) {
	suite.Run(t, new(NestTestSuite))
}

type NestTestSuite struct {
	suite.Suite
	signer *ArweaveSigner
}

func (s *NestTestSuite) SetupSuite() {
	var err error
	s.signer, err = NewArweaveSigner(testWalletJWK(s.T()))
	require.Nil(s.T(), err)
}

func (s *NestTestSuite) items(n int) (out []*DataItem) {
	out = make([]*DataItem, n)
	for i := range out {
		out[i] = &DataItem{
			Tags: Tags{{Name: "idx", Value: fmt.Sprintf("%d", i)}},
			Data: []byte(fmt.Sprintf("payload %d", i)),
		}
		err := out[i].Sign(s.signer)
		require.Nil(s.T(), err)
	}
	return
}

func (s *NestTestSuite) TestNestAndUnpack() {
	items := s.items(3)

	parent := &DataItem{}
	err := parent.NestItems(items)
	require.Nil(s.T(), err)

	format, ok := parent.Tags.Get("Bundle-Format")
	require.True(s.T(), ok)
	require.Equal(s.T(), "binary", format)

	version, ok := parent.Tags.Get("Bundle-Version")
	require.True(s.T(), ok)
	require.Equal(s.T(), "2.0.0", version)

	err = parent.Sign(s.signer)
	require.Nil(s.T(), err)

	unpacked, err := UnpackBundle(parent.Data)
	require.Nil(s.T(), err)
	require.Len(s.T(), unpacked, 3)

	// Order and identity of nested items survive the roundtrip
	for i, item := range unpacked {
		require.Equal(s.T(), items[i].Id, item.Id)
		require.Equal(s.T(), items[i].Data, item.Data)
		require.Nil(s.T(), item.Verify())
	}
}

func (s *NestTestSuite) TestNestRejectsUnsignedItems() {
	parent := &DataItem{}
	err := parent.NestItems([]*DataItem{{Data: []byte("unsigned")}})
	require.Equal(s.T(), ErrItemNotSigned, err)
}

func (s *NestTestSuite) TestUnpackRejectsTruncatedBundle() {
	_, err := UnpackBundle([]byte{1, 2, 3})
	require.Equal(s.T(), ErrBundleTooShort, err)
}
