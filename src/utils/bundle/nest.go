package bundle

import (
	"bytes"
	"io"
)

// Binary bundle layout:
// 32B item count | per item: 32B size + 32B id | concatenated items
// https://github.com/ArweaveTeam/arweave-standards/blob/master/ans/ANS-104.md#13-binary-format

// Packs the given signed items into self.Data so that the whole
// batch can be committed as one transaction.
func (self *DataItem) NestItems(items []*DataItem) (err error) {
	var header, body bytes.Buffer

	header.Write(LongTo32ByteArray(len(items)))

	for _, item := range items {
		if !item.IsSigned() {
			return ErrItemNotSigned
		}

		buf, err := item.Reader()
		if err != nil {
			return err
		}

		header.Write(LongTo32ByteArray(buf.Len()))
		header.Write(item.Id)

		_, err = buf.WriteTo(&body)
		if err != nil {
			return err
		}
	}

	self.Data = append(header.Bytes(), body.Bytes()...)

	self.Tags = self.Tags.Append([]Tag{
		{Name: "Bundle-Format", Value: "binary"},
		{Name: "Bundle-Version", Value: "2.0.0"},
	})

	return
}

// Reverse operation of NestItems
func UnpackBundle(data []byte) (items []*DataItem, err error) {
	reader := bytes.NewReader(data)

	countBuf := make([]byte, 32)
	_, err = io.ReadFull(reader, countBuf)
	if err != nil {
		return nil, ErrBundleTooShort
	}
	count := ByteArrayToLong(countBuf)

	sizes := make([]int, count)
	ids := make([][]byte, count)
	for i := 0; i < count; i++ {
		sizeBuf := make([]byte, 32)
		_, err = io.ReadFull(reader, sizeBuf)
		if err != nil {
			return nil, ErrBundleTooShort
		}
		sizes[i] = ByteArrayToLong(sizeBuf)

		ids[i] = make([]byte, 32)
		_, err = io.ReadFull(reader, ids[i])
		if err != nil {
			return nil, ErrBundleTooShort
		}
	}

	items = make([]*DataItem, count)
	for i := 0; i < count; i++ {
		buf := make([]byte, sizes[i])
		_, err = io.ReadFull(reader, buf)
		if err != nil {
			return nil, ErrBundleItemSizeMismatch
		}

		item := new(DataItem)
		err = item.Unmarshal(buf)
		if err != nil {
			return nil, err
		}

		if !bytes.Equal(item.Id, ids[i]) {
			return nil, ErrBundleItemIdMismatch
		}

		items[i] = item
	}

	return
}
