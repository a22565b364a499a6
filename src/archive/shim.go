package archive

import (
	"context"
)

// Object storage style adapter over the document operations, eases
// migrating call sites from bucket based stores. Stateless, the key
// only survives as the file name tag - retrieval goes by id.

func (self *Archive) PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (out *PutResult, err error) {
	result, err := self.UploadDocument(ctx, body, Metadata{
		Name:        key,
		ContentType: contentType,
	}, UploadOptions{
		Tags: metadata,
	})
	if err != nil {
		return
	}

	out = &PutResult{
		Id:  result.Id,
		Url: result.Url,
	}
	return
}

func (self *Archive) GetObject(ctx context.Context, key string) (out *Object, err error) {
	if len(key) == 0 {
		err = ErrDocumentIdEmpty
		return
	}

	body, contentType, err := self.gateway.GetDataWithContentType(ctx, key)
	if err != nil {
		// The gateway may simply not have it yet, the bundler node might
		body, err = self.GetDocument(ctx, key)
		if err != nil {
			return
		}
	}

	out = &Object{
		Body:        body,
		ContentType: contentType,
	}
	return
}
